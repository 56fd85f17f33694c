package domain

type (
	UserId     = string
	Username   = string
	Password   = string
	FileId     = string
	ObjectName = string
	ResourceId = string
	CommentId  = string
	RegistryId = string
	Tag        = string
)
