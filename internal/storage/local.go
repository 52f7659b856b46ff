// Package storage — файловое хранилище вложений. Сервису важен только
// локатор (FileURL), который он кладет в метаданные документа; сами байты
// живут вне базы.
package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"
)

// FileStore — контракт для сервиса документов.
type FileStore interface {
	// Save кладет содержимое файла и возвращает его локатор
	Save(travelRequestID, fileName string, content io.Reader) (string, error)
}

// LocalStore складывает файлы в каталог на диске.
// Имя файла получает префикс заявки и таймстемп, чтобы одноименные
// загрузки не перетирали друг друга.
type LocalStore struct {
	root string
	now  func() time.Time
}

func NewLocalStore(root string) *LocalStore {
	return &LocalStore{
		root: root,
		now:  func() time.Time { return time.Now().UTC() },
	}
}

func (s *LocalStore) Save(travelRequestID, fileName string, content io.Reader) (string, error) {
	if err := os.MkdirAll(s.root, 0o755); err != nil {
		return "", fmt.Errorf("storage: create uploads dir: %w", err)
	}

	// filepath.Base отсекает возможные ../ из пользовательского имени
	stored := fmt.Sprintf("%s_%s_%s",
		travelRequestID, s.now().Format("20060102150405"), filepath.Base(fileName))

	dst, err := os.Create(filepath.Join(s.root, stored))
	if err != nil {
		return "", fmt.Errorf("storage: create file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, content); err != nil {
		return "", fmt.Errorf("storage: write file: %w", err)
	}

	return "/uploads/" + stored, nil
}
