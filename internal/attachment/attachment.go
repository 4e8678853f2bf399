// Package attachment проверяет файлы перед отправкой в API: размер, расширение
// и реальный тип по магическим байтам.
package attachment

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/h2non/filetype"

	"github.com/ignatzorin/freelance-nexus/internal/models"
	"github.com/ignatzorin/freelance-nexus/internal/pkg/apperror"
)

// Policy набор разрешённых типов.
type Policy struct {
	Name       string
	MimeTypes  map[string]bool
	Extensions map[string]bool
}

// Images изображения для портфолио.
var Images = Policy{
	Name: "изображения",
	MimeTypes: map[string]bool{
		"image/jpeg": true,
		"image/png":  true,
		"image/gif":  true,
		"image/webp": true,
	},
	Extensions: map[string]bool{
		".jpg":  true,
		".jpeg": true,
		".png":  true,
		".gif":  true,
		".webp": true,
	},
}

// Documents вложения к предложению: изображения, PDF, архивы и офисные документы.
var Documents = Policy{
	Name: "документы",
	MimeTypes: map[string]bool{
		"image/jpeg":      true,
		"image/png":       true,
		"application/pdf": true,
		"application/zip": true,
		"application/vnd.openxmlformats-officedocument.wordprocessingml.document": true,
	},
	Extensions: map[string]bool{
		".jpg":  true,
		".jpeg": true,
		".png":  true,
		".pdf":  true,
		".zip":  true,
		".docx": true,
	},
}

// Validator читает файлы с ограничением размера.
type Validator struct {
	maxBytes int64
}

// New создаёт валидатор с лимитом в мегабайтах.
func New(maxUploadMB int64) *Validator {
	if maxUploadMB <= 0 {
		maxUploadMB = 10
	}
	return &Validator{maxBytes: maxUploadMB * 1024 * 1024}
}

// MaxBytes лимит размера файла.
func (v *Validator) MaxBytes() int64 {
	return v.maxBytes
}

// ReadFile открывает файл с диска и проверяет его.
func (v *Validator) ReadFile(ctx context.Context, path string, policy Policy) (models.Attachment, error) {
	f, err := os.Open(path)
	if err != nil {
		return models.Attachment{}, apperror.Wrap(err, apperror.ErrCodeValidation, "не удалось открыть файл "+filepath.Base(path))
	}
	defer f.Close()
	return v.Read(ctx, filepath.Base(path), f, policy)
}

// Read читает не больше лимита и возвращает вложение с содержимым в base64.
func (v *Validator) Read(ctx context.Context, name string, r io.Reader, policy Policy) (models.Attachment, error) {
	if err := ctx.Err(); err != nil {
		return models.Attachment{}, err
	}

	name = sanitizeFilename(name)
	ext := strings.ToLower(filepath.Ext(name))
	if !policy.Extensions[ext] {
		return models.Attachment{}, apperror.Validation(fmt.Sprintf(
			"неподдерживаемый формат файла %s. Разрешены %s: %s", name, policy.Name, strings.Join(keys(policy.Extensions), ", ")))
	}

	limited := io.LimitedReader{R: r, N: v.maxBytes + 1}
	data, err := io.ReadAll(&limited)
	if err != nil {
		return models.Attachment{}, apperror.Wrap(err, apperror.ErrCodeValidation, "ошибка чтения файла "+name)
	}
	if len(data) == 0 {
		return models.Attachment{}, apperror.Validation("файл " + name + " пустой")
	}
	if int64(len(data)) > v.maxBytes {
		return models.Attachment{}, apperror.Validation(fmt.Sprintf("файл %s превышает лимит %d байт", name, v.maxBytes))
	}

	head := data
	if len(head) > 512 {
		head = head[:512]
	}
	kind, err := filetype.Match(head)
	if err != nil || kind == filetype.Unknown {
		return models.Attachment{}, apperror.Validation("не удалось определить тип файла " + name)
	}

	mime := kind.MIME.Value
	if !policy.MimeTypes[mime] {
		return models.Attachment{}, apperror.Validation(fmt.Sprintf(
			"неподдерживаемый тип файла %s (%s). Разрешены %s", name, mime, policy.Name))
	}

	// .jpg и .jpeg одно и то же
	expected := "." + kind.Extension
	if ext != expected && !(isJPEG(ext) && isJPEG(expected)) {
		return models.Attachment{}, apperror.Validation(fmt.Sprintf(
			"расширение файла (%s) не соответствует реальному типу (%s)", ext, expected))
	}

	return models.Attachment{
		Name: name,
		MIME: mime,
		Size: int64(len(data)),
		Data: base64.StdEncoding.EncodeToString(data),
	}, nil
}

func isJPEG(ext string) bool {
	return ext == ".jpg" || ext == ".jpeg"
}

// sanitizeFilename удаляет путь и опасные символы.
func sanitizeFilename(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	name = strings.ReplaceAll(name, "..", "")
	if name == "" || name == "." || name == "/" {
		name = "file"
	}
	return name
}

func keys(m map[string]bool) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
