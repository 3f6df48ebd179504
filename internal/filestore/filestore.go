package filestore

import (
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/blake2b"
)

var (
	ErrInvalidKey = errors.New("filestore: invalid key")
	ErrTooLarge   = errors.New("filestore: file too large")
)

// Store 업로드 원본과 TTS 결과를 디스크에 보관
// key 형식: <userID>/<kind>/<uuid><ext>
type Store struct {
	root string
}

func New(root string) (*Store, error) {
	if err := os.MkdirAll(root, 0755); err != nil {
		return nil, fmt.Errorf("filestore.New(): failed to create root directory: %w", err)
	}
	return &Store{root: root}, nil
}

// NewKey 사용자/종류별 새 key
func NewKey(userID, kind, ext string) string {
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return userID + "/" + kind + "/" + uuid.NewString() + ext
}

// validSegment key 한 구간 (구분자, ".", ".." 불가)
func validSegment(seg string) bool {
	return seg != "" && seg != "." && seg != ".." && !strings.ContainsAny(seg, `/\`)
}

// Path key를 root 하위 경로로 변환, key는 정확히 세 구간
func (s *Store) Path(key string) (string, error) {
	parts := strings.Split(key, "/")
	if len(parts) != 3 {
		return "", ErrInvalidKey
	}
	clean := make([]string, 0, len(parts)+1)
	clean = append(clean, s.root)
	for _, p := range parts {
		if !validSegment(p) || filepath.Base(p) != p {
			return "", ErrInvalidKey
		}
		clean = append(clean, p)
	}
	return filepath.Join(clean...), nil
}

// Save 임시 파일에 기록 후 rename, 크기와 blake2b-256 digest 반환
// limit <= 0 이면 크기 제한 없음
func (s *Store) Save(key string, r io.Reader, limit int64) (int64, string, error) {
	path, err := s.Path(key)
	if err != nil {
		return 0, "", err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return 0, "", fmt.Errorf("Store.Save(): %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".upload-*")
	if err != nil {
		return 0, "", fmt.Errorf("Store.Save(): %w", err)
	}
	defer os.Remove(tmp.Name())

	h, _ := blake2b.New256(nil)
	src := r
	if limit > 0 {
		src = io.LimitReader(r, limit+1)
	}
	n, err := io.Copy(io.MultiWriter(tmp, h), src)
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return 0, "", fmt.Errorf("Store.Save(): failed to write %s: %w", key, err)
	}
	if limit > 0 && n > limit {
		return 0, "", ErrTooLarge
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return 0, "", fmt.Errorf("Store.Save(): %w", err)
	}
	return n, hex.EncodeToString(h.Sum(nil)), nil
}

func (s *Store) Open(key string) (*os.File, error) {
	path, err := s.Path(key)
	if err != nil {
		return nil, err
	}
	return os.Open(path)
}

func (s *Store) ReadAll(key string) ([]byte, error) {
	path, err := s.Path(key)
	if err != nil {
		return nil, err
	}
	return os.ReadFile(path)
}

// Delete 없는 파일은 무시
func (s *Store) Delete(key string) error {
	path, err := s.Path(key)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// DeleteUser 사용자 디렉터리 전체 삭제
func (s *Store) DeleteUser(userID string) error {
	if !validSegment(userID) {
		return ErrInvalidKey
	}
	return os.RemoveAll(filepath.Join(s.root, userID))
}
