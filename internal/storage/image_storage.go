package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/h2non/filetype"
)

var (
	// ErrEmptyFile файл нулевой длины.
	ErrEmptyFile = errors.New("файл не может быть пустым")
	// ErrUnsupportedType содержимое или расширение не является поддерживаемым изображением.
	ErrUnsupportedType = errors.New("неподдерживаемый формат файла. Разрешены: .jpg, .jpeg, .png, .gif, .webp")
	// ErrExtensionMismatch расширение не совпадает с реальным типом файла.
	ErrExtensionMismatch = errors.New("расширение файла не соответствует его содержимому")
	// ErrTooLarge файл превышает лимит.
	ErrTooLarge = errors.New("размер файла превышает лимит")
)

// Разрешённые расширения и соответствующий MIME тип
var allowedImages = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".webp": "image/webp",
}

const sniffLen = 512

// StoredFile результат сохранения изображения.
type StoredFile struct {
	Path     string
	MimeType string
	Size     int64
}

// ImageStorage хранит изображения товаров на локальном диске.
type ImageStorage struct {
	rootPath       string
	urlPrefix      string
	maxUploadBytes int64
}

// NewImageStorage создаёт файловое хранилище.
func NewImageStorage(rootPath, urlPrefix string, maxUploadMB int64) (*ImageStorage, error) {
	if err := os.MkdirAll(rootPath, 0o755); err != nil {
		return nil, fmt.Errorf("storage: не удалось создать каталог %s: %w", rootPath, err)
	}

	return &ImageStorage{
		rootPath:       rootPath,
		urlPrefix:      strings.TrimSuffix(urlPrefix, "/"),
		maxUploadBytes: maxUploadMB * 1024 * 1024,
	}, nil
}

// MaxUploadBytes возвращает лимит размера одного файла.
func (s *ImageStorage) MaxUploadBytes() int64 {
	return s.maxUploadBytes
}

// Save проверяет расширение и магические байты, затем сохраняет файл в каталог товара.
func (s *ImageStorage) Save(ctx context.Context, productID uuid.UUID, originalName string, r io.Reader) (*StoredFile, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	ext := strings.ToLower(filepath.Ext(originalName))
	mime, ok := allowedImages[ext]
	if !ok {
		return nil, ErrUnsupportedType
	}

	head := make([]byte, sniffLen)
	n, err := io.ReadFull(r, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("storage: не удалось прочитать файл: %w", err)
	}
	if n == 0 {
		return nil, ErrEmptyFile
	}
	head = head[:n]

	kind, err := filetype.Match(head)
	if err != nil || kind == filetype.Unknown {
		return nil, ErrUnsupportedType
	}
	if kind.MIME.Value != mime {
		if _, allowed := allowedImages["."+kind.Extension]; allowed {
			return nil, ErrExtensionMismatch
		}
		return nil, ErrUnsupportedType
	}

	dir := filepath.Join(s.rootPath, productID.String())
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("storage: не удалось создать каталог товара: %w", err)
	}

	fileName := fmt.Sprintf("%d_%s%s", time.Now().UnixNano(), uuid.NewString()[:8], ext)
	targetPath := filepath.Join(dir, fileName)
	tempPath := targetPath + ".tmp"

	f, err := os.Create(tempPath)
	if err != nil {
		return nil, fmt.Errorf("storage: не удалось создать файл: %w", err)
	}
	defer f.Close()

	limited := &io.LimitedReader{R: io.MultiReader(bytes.NewReader(head), r), N: s.maxUploadBytes + 1}
	written, err := io.Copy(f, limited)
	if err != nil {
		_ = os.Remove(tempPath)
		return nil, fmt.Errorf("storage: ошибка записи файла: %w", err)
	}
	if written > s.maxUploadBytes {
		_ = f.Close()
		_ = os.Remove(tempPath)
		return nil, ErrTooLarge
	}

	if err := f.Close(); err != nil {
		_ = os.Remove(tempPath)
		return nil, fmt.Errorf("storage: ошибка закрытия файла: %w", err)
	}
	if err := os.Rename(tempPath, targetPath); err != nil {
		return nil, fmt.Errorf("storage: не удалось переименовать файл: %w", err)
	}

	return &StoredFile{
		Path:     path.Join(productID.String(), fileName),
		MimeType: mime,
		Size:     written,
	}, nil
}

// Delete удаляет файл из хранилища. Отсутствующий файл не считается ошибкой.
func (s *ImageStorage) Delete(ctx context.Context, relativePath string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	target, err := s.resolve(relativePath)
	if err != nil {
		return err
	}
	if err := os.Remove(target); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("storage: не удалось удалить файл: %w", err)
	}
	return nil
}

// DeleteDir удаляет каталог товара со всеми файлами.
func (s *ImageStorage) DeleteDir(ctx context.Context, productID uuid.UUID) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.RemoveAll(filepath.Join(s.rootPath, productID.String())); err != nil {
		return fmt.Errorf("storage: не удалось удалить каталог товара: %w", err)
	}
	return nil
}

// URL возвращает публичный адрес файла.
func (s *ImageStorage) URL(relativePath string) string {
	return s.urlPrefix + "/" + strings.TrimPrefix(filepath.ToSlash(relativePath), "/")
}

// resolve не даёт выйти за пределы корневого каталога.
func (s *ImageStorage) resolve(relativePath string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(relativePath))
	if filepath.IsAbs(clean) || clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("storage: недопустимый путь %q", relativePath)
	}
	return filepath.Join(s.rootPath, clean), nil
}
