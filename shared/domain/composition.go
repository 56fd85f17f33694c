package domain

const NoDescription = "No description"

// Composition is a File joined with its Registry record.
// It only exists on the client and is rebuilt on every fetch.
type Composition struct {
	Id            FileId     `json:"id"`
	Url           string     `json:"url"`
	Owner         UserId     `json:"owner"`
	FileName      string     `json:"fileName"`
	GcsObjectName ObjectName `json:"gcsObjectName"`
	Description   string     `json:"description"`
	Tags          []Tag      `json:"tags"`
}

func NewComposition(file File, registry Registry) Composition {
	tags := registry.Tags
	if tags == nil {
		tags = []Tag{}
	}
	return Composition{
		Id:            file.Id,
		Url:           file.Url,
		Owner:         file.Owner,
		FileName:      file.FileName,
		GcsObjectName: file.GcsObjectName,
		Description:   registry.Description,
		Tags:          tags,
	}
}
