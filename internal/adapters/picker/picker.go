package picker

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/gabriel-vasile/mimetype"
	"github.com/samber/lo"
	"github.com/spf13/afero"

	"github.com/devbush/compliancecheck/internal/domain"
	"github.com/devbush/compliancecheck/internal/ports"
)

// DefaultMaxSize is the per-file upload limit when none is configured
const DefaultMaxSize = 200 * 1024 * 1024

// accepted maps each allowed extension to the content types it may sniff as.
// Encoders often write generic isom or mp42 brands into AAC files, which
// sniff as video/mp4.
var accepted = map[string][]string{
	".mp3": {"audio/mpeg"},
	".wav": {"audio/wav"},
	".m4a": {"audio/x-m4a", "audio/mp4", "video/mp4"},
}

// uploadType is the content type sent for a sniffed type, when it differs
var uploadType = map[string]string{
	"video/mp4": "audio/mp4",
}

// Extensions lists the accepted file extensions in display order
var Extensions = []string{".mp3", ".wav", ".m4a"}

// Picker implements ports.FilePicker on top of an afero filesystem
type Picker struct {
	fs      afero.Fs
	maxSize int64
}

// NewPicker creates a picker; maxSize <= 0 means DefaultMaxSize
func NewPicker(fs afero.Fs, maxSize int64) *Picker {
	if maxSize <= 0 {
		maxSize = DefaultMaxSize
	}
	return &Picker{fs: fs, maxSize: maxSize}
}

// Pick resolves paths into accepted audio files and rejections.
// Directories expand to the audio files they directly contain.
func (p *Picker) Pick(paths []string) (*ports.PickResult, error) {
	result := &ports.PickResult{
		Accepted: make([]domain.SelectedFile, 0),
		Rejected: make([]domain.Rejection, 0),
	}

	candidates, rejected := p.expand(paths)
	result.Rejected = append(result.Rejected, rejected...)

	for _, path := range candidates {
		file, rejection := p.check(path)
		if rejection != nil {
			result.Rejected = append(result.Rejected, *rejection)
			continue
		}
		result.Accepted = append(result.Accepted, *file)
	}

	return result, nil
}

// expand cleans, deduplicates and expands directories, keeping first appearance
func (p *Picker) expand(paths []string) ([]string, []domain.Rejection) {
	var files []string
	var rejected []domain.Rejection

	for _, path := range lo.Uniq(lo.Map(paths, func(s string, _ int) string { return filepath.Clean(s) })) {
		info, err := p.fs.Stat(path)
		if err != nil {
			rejected = append(rejected, *readRejection(path, err))
			continue
		}

		if !info.IsDir() {
			files = append(files, path)
			continue
		}

		entries, err := afero.ReadDir(p.fs, path)
		if err != nil {
			rejected = append(rejected, *readRejection(path, err))
			continue
		}
		for _, entry := range entries {
			name := entry.Name()
			if entry.IsDir() || strings.HasPrefix(name, ".") {
				continue
			}
			// Only audio files are picked from directories, other files are ignored
			if _, ok := accepted[strings.ToLower(filepath.Ext(name))]; !ok {
				continue
			}
			files = append(files, filepath.Join(path, name))
		}
	}

	return lo.Uniq(files), rejected
}

// check validates one file and returns a rejection when it fails
func (p *Picker) check(path string) (*domain.SelectedFile, *domain.Rejection) {
	ext := strings.ToLower(filepath.Ext(path))
	types, ok := accepted[ext]
	if !ok {
		return nil, reject(path, domain.ErrUnsupportedType, "File type must be one of %s", strings.Join(Extensions, ", "))
	}

	info, err := p.fs.Stat(path)
	if err != nil {
		return nil, readRejection(path, err)
	}
	if !info.Mode().IsRegular() {
		return nil, reject(path, domain.ErrUnsupportedType, "Not a regular file")
	}
	if info.Size() > p.maxSize {
		return nil, reject(path, domain.ErrFileTooLarge, "File is larger than %s", humanize.IBytes(uint64(p.maxSize)))
	}

	mtype, err := p.sniff(path)
	if err != nil {
		return nil, readRejection(path, err)
	}

	matched, ok := lo.Find(types, func(t string) bool { return mtype.Is(t) })
	if !ok {
		return nil, reject(path, domain.ErrUnsupportedType, "File content is %s, not %s audio", mtype.String(), ext)
	}

	return &domain.SelectedFile{
		Name:        filepath.Base(path),
		Path:        path,
		Size:        info.Size(),
		ContentType: lo.ValueOr(uploadType, matched, matched),
	}, nil
}

func (p *Picker) sniff(path string) (*mimetype.MIME, error) {
	f, err := p.fs.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return mimetype.DetectReader(f)
}

func reject(path string, err error, format string, args ...any) *domain.Rejection {
	return &domain.Rejection{
		FileName: filepath.Base(path),
		Reason:   fmt.Sprintf(format, args...),
		Err:      err,
	}
}

func readRejection(path string, err error) *domain.Rejection {
	r := &domain.Rejection{FileName: filepath.Base(path), Err: err}
	switch {
	case os.IsNotExist(err):
		r.Reason = "File not found"
	case os.IsPermission(err):
		r.Reason = "Permission denied"
	default:
		r.Reason = fmt.Sprintf("Cannot read file: %v", err)
	}
	return r
}

var _ ports.FilePicker = (*Picker)(nil)
