package mockapi

import (
	"io"
	"net/http"
	"sync"

	"github.com/itchan-dev/tunetag/shared/domain"
	internal_errors "github.com/itchan-dev/tunetag/shared/errors"
	"github.com/itchan-dev/tunetag/shared/utils"
	"golang.org/x/crypto/bcrypt"
)

type user struct {
	id       domain.UserId
	username domain.Username
	passHash []byte
}

type pendingUpload struct {
	owner       domain.UserId
	fileName    string
	token       string
	contentType string
	uploaded    bool
}

// Backend is the in-memory state of the mock API. Every method is safe for
// concurrent use. Failures are *errors.ErrorWithStatusCode.
type Backend struct {
	objects  *Objects
	passCost int

	mu         sync.RWMutex
	users      map[domain.UserId]*user
	usernames  map[domain.Username]domain.UserId
	pending    map[domain.ObjectName]*pendingUpload
	files      map[domain.FileId]domain.File
	fileOrder  []domain.FileId
	objectType map[domain.ObjectName]string

	commentResources map[domain.ResourceId]struct{}
	comments         map[domain.CommentId]domain.Comment
	commentOrder     []domain.CommentId

	registries    map[domain.RegistryId]*domain.Registry
	registryOf    map[domain.ResourceId]domain.RegistryId
	registryOrder []domain.RegistryId
}

type BackendOption func(*Backend)

// WithPasswordCost sets the bcrypt cost. Tests use bcrypt.MinCost.
func WithPasswordCost(cost int) BackendOption {
	return func(b *Backend) { b.passCost = cost }
}

func NewBackend(objects *Objects, opts ...BackendOption) *Backend {
	b := &Backend{
		objects:          objects,
		passCost:         bcrypt.DefaultCost,
		users:            make(map[domain.UserId]*user),
		usernames:        make(map[domain.Username]domain.UserId),
		pending:          make(map[domain.ObjectName]*pendingUpload),
		files:            make(map[domain.FileId]domain.File),
		objectType:       make(map[domain.ObjectName]string),
		commentResources: make(map[domain.ResourceId]struct{}),
		comments:         make(map[domain.CommentId]domain.Comment),
		registries:       make(map[domain.RegistryId]*domain.Registry),
		registryOf:       make(map[domain.ResourceId]domain.RegistryId),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

func statusError(status int, msg string) error {
	return &internal_errors.ErrorWithStatusCode{Message: msg, StatusCode: status}
}

// === Users ===

func (b *Backend) Register(username domain.Username, password domain.Password) (domain.UserId, error) {
	passHash, err := bcrypt.GenerateFromPassword([]byte(password), b.passCost)
	if err != nil {
		return "", err
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.usernames[username]; ok {
		return "", statusError(http.StatusConflict, "username already taken")
	}
	u := &user{id: utils.NewId(), username: username, passHash: passHash}
	b.users[u.id] = u
	b.usernames[username] = u.id
	return u.id, nil
}

// authenticate must be called with b.mu held.
func (b *Backend) authenticate(username domain.Username, password domain.Password) (*user, error) {
	id, ok := b.usernames[username]
	if !ok {
		return nil, statusError(http.StatusUnauthorized, "invalid username or password")
	}
	u := b.users[id]
	if bcrypt.CompareHashAndPassword(u.passHash, []byte(password)) != nil {
		return nil, statusError(http.StatusUnauthorized, "invalid username or password")
	}
	return u, nil
}

func (b *Backend) Login(username domain.Username, password domain.Password) (domain.UserId, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	u, err := b.authenticate(username, password)
	if err != nil {
		return "", err
	}
	return u.id, nil
}

func (b *Backend) DeleteUser(username domain.Username, password domain.Password) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	u, err := b.authenticate(username, password)
	if err != nil {
		return err
	}
	delete(b.users, u.id)
	delete(b.usernames, u.username)
	return nil
}

func (b *Backend) ChangePassword(username domain.Username, oldPassword, newPassword domain.Password) error {
	passHash, err := bcrypt.GenerateFromPassword([]byte(newPassword), b.passCost)
	if err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	u, err := b.authenticate(username, oldPassword)
	if err != nil {
		return err
	}
	u.passHash = passHash
	return nil
}

func (b *Backend) Username(userId domain.UserId) (domain.Username, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	u, ok := b.users[userId]
	if !ok {
		return "", statusError(http.StatusNotFound, "user not found")
	}
	return u.username, nil
}

// === Files ===

// RequestUpload reserves an object name and the token that authorizes one PUT.
func (b *Backend) RequestUpload(fileName string, owner domain.UserId) (domain.ObjectName, string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.users[owner]; !ok {
		return "", "", statusError(http.StatusNotFound, "user not found")
	}
	objectName := utils.NewObjectName(owner, fileName)
	token := utils.GenerateUploadToken()
	b.pending[objectName] = &pendingUpload{owner: owner, fileName: fileName, token: token}
	return objectName, token, nil
}

// PutObject stores the bytes of a requested upload. The token is one-shot.
func (b *Backend) PutObject(objectName domain.ObjectName, token, contentType string, data io.Reader) error {
	b.mu.Lock()
	p, ok := b.pending[objectName]
	if !ok || p.token == "" || p.token != token {
		b.mu.Unlock()
		return statusError(http.StatusForbidden, "invalid upload token")
	}
	p.token = ""
	b.mu.Unlock()

	if _, err := b.objects.Save(objectName, data); err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	p.uploaded = true
	p.contentType = contentType
	return nil
}

// ConfirmUpload turns an uploaded object into a file served at viewUrl.
func (b *Backend) ConfirmUpload(fileName string, objectName domain.ObjectName, owner domain.UserId, viewUrl string) (domain.FileId, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	p, ok := b.pending[objectName]
	if !ok || p.owner != owner {
		return "", statusError(http.StatusNotFound, "upload not found")
	}
	if !p.uploaded {
		return "", statusError(http.StatusConflict, "object has not been uploaded")
	}

	file := domain.File{
		Id:            utils.NewId(),
		Url:           viewUrl,
		Owner:         owner,
		FileName:      fileName,
		GcsObjectName: objectName,
	}
	b.files[file.Id] = file
	b.fileOrder = append(b.fileOrder, file.Id)
	b.objectType[objectName] = p.contentType
	delete(b.pending, objectName)
	return file.Id, nil
}

func (b *Backend) FilesByUser(owner domain.UserId) []domain.File {
	b.mu.RLock()
	defer b.mu.RUnlock()
	files := []domain.File{}
	for _, id := range b.fileOrder {
		if f := b.files[id]; f.Owner == owner {
			files = append(files, f)
		}
	}
	return files
}

func (b *Backend) File(fileId domain.FileId) (domain.File, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	f, ok := b.files[fileId]
	if !ok {
		return domain.File{}, statusError(http.StatusNotFound, "file not found")
	}
	return f, nil
}

// Object opens a confirmed object and reports its content type.
func (b *Backend) Object(objectName domain.ObjectName) (io.ReadCloser, string, error) {
	b.mu.RLock()
	contentType, ok := b.objectType[objectName]
	b.mu.RUnlock()
	if !ok {
		return nil, "", statusError(http.StatusNotFound, "object not found")
	}
	rc, err := b.objects.Open(objectName)
	return rc, contentType, err
}

// === Comments ===

func (b *Backend) RegisterCommentResource(resource domain.ResourceId) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.commentResources[resource]; ok {
		return statusError(http.StatusConflict, "resource already registered")
	}
	b.commentResources[resource] = struct{}{}
	return nil
}

func (b *Backend) CommentsByResource(resource domain.ResourceId) []domain.Comment {
	b.mu.RLock()
	defer b.mu.RUnlock()
	comments := []domain.Comment{}
	for _, id := range b.commentOrder {
		if c := b.comments[id]; c.Resource == resource {
			comments = append(comments, c)
		}
	}
	return comments
}

func (b *Backend) AddComment(resource domain.ResourceId, commenter domain.UserId, text, date string) (domain.CommentId, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.commentResources[resource]; !ok {
		return "", statusError(http.StatusNotFound, "resource not registered")
	}
	if _, ok := b.users[commenter]; !ok {
		return "", statusError(http.StatusNotFound, "user not found")
	}
	c := domain.Comment{Id: utils.NewId(), Resource: resource, Commenter: commenter, Text: text, Date: date}
	b.comments[c.Id] = c
	b.commentOrder = append(b.commentOrder, c.Id)
	return c.Id, nil
}

func (b *Backend) RemoveComment(commentId domain.CommentId, userId domain.UserId) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	c, ok := b.comments[commentId]
	if !ok {
		return statusError(http.StatusNotFound, "comment not found")
	}
	if c.Commenter != userId {
		return statusError(http.StatusForbidden, "only the commenter can remove a comment")
	}
	delete(b.comments, commentId)
	for i, id := range b.commentOrder {
		if id == commentId {
			b.commentOrder = append(b.commentOrder[:i], b.commentOrder[i+1:]...)
			break
		}
	}
	return nil
}

// === Tagging ===

func (b *Backend) RegisterTaggedResource(resource domain.ResourceId, description string) (domain.RegistryId, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.registryOf[resource]; ok {
		return "", statusError(http.StatusConflict, "resource already registered")
	}
	r := &domain.Registry{Id: utils.NewId(), Resource: resource, Description: description, Tags: []domain.Tag{}}
	b.registries[r.Id] = r
	b.registryOf[resource] = r.Id
	b.registryOrder = append(b.registryOrder, r.Id)
	return r.Id, nil
}

func (b *Backend) AddTag(registryId domain.RegistryId, tag domain.Tag) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	r, ok := b.registries[registryId]
	if !ok {
		return statusError(http.StatusNotFound, "registry not found")
	}
	if r.HasTag(tag) {
		return statusError(http.StatusConflict, "tag already added")
	}
	r.Tags = append(r.Tags, tag)
	return nil
}

func (b *Backend) RegistryByResource(resource domain.ResourceId) (domain.Registry, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	id, ok := b.registryOf[resource]
	if !ok {
		return domain.Registry{}, statusError(http.StatusNotFound, "registry not found")
	}
	return copyRegistry(b.registries[id]), nil
}

// RegistriesByTags returns the registries carrying every one of tags, in
// registration order.
func (b *Backend) RegistriesByTags(tags []domain.Tag) []domain.Registry {
	b.mu.RLock()
	defer b.mu.RUnlock()
	matches := []domain.Registry{}
	for _, id := range b.registryOrder {
		r := b.registries[id]
		all := true
		for _, tag := range tags {
			if !r.HasTag(tag) {
				all = false
				break
			}
		}
		if all {
			matches = append(matches, copyRegistry(r))
		}
	}
	return matches
}

func copyRegistry(r *domain.Registry) domain.Registry {
	c := *r
	c.Tags = append([]domain.Tag{}, r.Tags...)
	return c
}
