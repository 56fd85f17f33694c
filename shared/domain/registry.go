package domain

// Registry maps a taggable resource (file, comment) to a description and tags.
type Registry struct {
	Id          RegistryId `json:"_id"`
	Resource    ResourceId `json:"resource"`
	Description string     `json:"description"`
	Tags        []Tag      `json:"tags"`
}

func (r Registry) HasTag(tag Tag) bool {
	for _, t := range r.Tags {
		if t == tag {
			return true
		}
	}
	return false
}
