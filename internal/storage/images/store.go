package images

import (
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"golang.org/x/image/draw"
)

// ErrUnsupportedExtension текст ошибки отдается клиенту как есть.
var ErrUnsupportedExtension = errors.New("File extension not supported")

const (
	canvasSize = 200
	dirPerm    = 0o755
)

// Store хранилище загружаемых изображений (логотипы, картинки продуктов).
// Файлы пишутся под случайными именами и приводятся к канвасу 200x200.
// Запись файла не участвует в транзакциях БД и может упасть независимо.
type Store struct {
	dir string
}

func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, dirPerm); err != nil {
		return nil, errors.Wrapf(err, "creating images dir %s", dir)
	}
	return &Store{dir: dir}, nil
}

// Save валидирует расширение (только jpg/png), декодирует изображение,
// ресайзит до 200x200 и сохраняет под сгенерированным именем.
// Возвращает имя сохраненного файла.
func (s *Store) Save(src io.Reader, originalName string) (string, error) {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(originalName), "."))
	if ext != "jpg" && ext != "png" {
		return "", ErrUnsupportedExtension
	}

	img, _, decodeErr := image.Decode(src)
	if decodeErr != nil {
		return "", errors.Wrap(decodeErr, "decoding image")
	}

	resized := resize(img)

	filename := uuid.NewString() + "." + ext
	fullPath := filepath.Join(s.dir, filename)

	out, createErr := os.Create(fullPath)
	if createErr != nil {
		return "", errors.Wrapf(createErr, "creating image file %s", fullPath)
	}
	defer out.Close() //nolint:errcheck

	var encodeErr error
	switch ext {
	case "png":
		encodeErr = png.Encode(out, resized)
	default:
		encodeErr = jpeg.Encode(out, resized, nil)
	}
	if encodeErr != nil {
		// битый частично записанный файл никому не нужен.
		_ = os.Remove(fullPath)
		return "", errors.Wrapf(encodeErr, "encoding image %s", filename)
	}

	return filename, nil
}

// Remove удаляет сохраненный ранее файл. Используется для отката, когда
// запись ссылки на файл в базу не удалась.
func (s *Store) Remove(filename string) error {
	if err := os.Remove(filepath.Join(s.dir, filename)); err != nil {
		return errors.Wrapf(err, "removing image %s", filename)
	}
	return nil
}

func resize(img image.Image) image.Image {
	dst := image.NewRGBA(image.Rect(0, 0, canvasSize, canvasSize))
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Over, nil)
	return dst
}
