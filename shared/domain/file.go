package domain

// File is an uploaded object as the backend describes it.
// Created by the three-step upload protocol and read-only afterwards.
type File struct {
	Id            FileId     `json:"_id"`
	Url           string     `json:"url"`
	Owner         UserId     `json:"owner"`
	FileName      string     `json:"fileName"`
	GcsObjectName ObjectName `json:"gcsObjectName"`
}
