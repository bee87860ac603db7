package usecase

import (
	"context"
	"sync"

	"github.com/fiapx/fiapx-video-events/internal/domain/entity"
)

type pathCall struct {
	Key  string
	Path string
}

type fakeStorage struct {
	mu        sync.Mutex
	downloads []pathCall
	uploads   []pathCall
	files     map[string][]byte
	downErr   error
	upErr     error
	getErr    error
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{files: map[string][]byte{}}
}

func (f *fakeStorage) UploadFile(_ context.Context, key string, data []byte, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.upErr != nil {
		return f.upErr
	}
	f.files[key] = data
	return nil
}

func (f *fakeStorage) UploadFileFromPath(_ context.Context, key, path, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.uploads = append(f.uploads, pathCall{Key: key, Path: path})
	return f.upErr
}

func (f *fakeStorage) DownloadFile(_ context.Context, key string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.files[key], nil
}

func (f *fakeStorage) DownloadFileToPath(_ context.Context, key, targetPath string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.downloads = append(f.downloads, pathCall{Key: key, Path: targetPath})
	return f.downErr
}

type dirCall struct {
	From string
	To   string
}

type fakeExtractor struct {
	calls []dirCall
	err   error
}

func (f *fakeExtractor) ExtractFrames(_ context.Context, videoPath, outputDir string) error {
	f.calls = append(f.calls, dirCall{From: videoPath, To: outputDir})
	return f.err
}

type fakeZipper struct {
	calls []dirCall
	err   error
}

func (f *fakeZipper) ZipDirectory(_ context.Context, sourceDir, zipPath string) error {
	f.calls = append(f.calls, dirCall{From: sourceDir, To: zipPath})
	return f.err
}

type published struct {
	EventType string
	Payload   any
}

type fakePublisher struct {
	mu     sync.Mutex
	events []published
	err    error
}

func (f *fakePublisher) Connect(context.Context) error { return nil }

func (f *fakePublisher) Publish(_ context.Context, eventType string, payload any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.events = append(f.events, published{EventType: eventType, Payload: payload})
	return nil
}

func (f *fakePublisher) Disconnect() {}

type fakeRepository struct {
	videos    map[string]*entity.Video
	createErr error
}

func newFakeRepository(videos ...*entity.Video) *fakeRepository {
	r := &fakeRepository{videos: map[string]*entity.Video{}}
	for _, v := range videos {
		r.videos[v.ID] = v
	}
	return r
}

func (r *fakeRepository) Create(_ context.Context, v *entity.Video) error {
	if r.createErr != nil {
		return r.createErr
	}
	r.videos[v.ID] = v
	return nil
}

func (r *fakeRepository) FindByID(_ context.Context, id string) (*entity.Video, error) {
	v, ok := r.videos[id]
	if !ok {
		return nil, entity.ErrVideoNotFound
	}
	return v, nil
}

func (r *fakeRepository) ListByUser(_ context.Context, userID string) ([]*entity.Video, error) {
	var out []*entity.Video
	for _, v := range r.videos {
		if v.UserID == userID {
			out = append(out, v)
		}
	}
	return out, nil
}

func (r *fakeRepository) UpdateStatus(_ context.Context, id string, u entity.VideoUpdate) error {
	v, ok := r.videos[id]
	if !ok {
		return entity.ErrVideoNotFound
	}
	v.Apply(u)
	return nil
}
