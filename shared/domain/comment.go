package domain

import "html/template"

type Comment struct {
	Id        CommentId  `json:"_id"`
	Resource  ResourceId `json:"resource"`
	Commenter UserId     `json:"commenter"`
	Text      string     `json:"text"`
	Date      string     `json:"date"`
	Tags      []Tag      `json:"tags"`

	// HTML is the rendered Text. Filled client-side only.
	HTML template.HTML `json:"-"`
}
