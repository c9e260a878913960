package storage

import (
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// LocalStore 将对象写入本地目录，URL 形如 baseURL/ownerKey/filename，
// 由路由层以静态文件方式对外提供。
type LocalStore struct {
	dir     string
	baseURL string
}

// NewLocalStore creates a LocalStore rooted at dir, serving URLs under baseURL.
func NewLocalStore(dir, baseURL string) *LocalStore {
	return &LocalStore{
		dir:     dir,
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

// Put writes data under ownerKey/filename and returns the public URL.
func (s *LocalStore) Put(ownerKey, filename string, data []byte) (string, error) {
	owner := sanitizeSegment(ownerKey)
	name := sanitizeSegment(filename)
	if name == "" {
		return "", errors.New("filename is required")
	}

	dir := filepath.Join(s.dir, owner)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}

	if err := os.WriteFile(filepath.Join(dir, name), data, 0o644); err != nil {
		return "", err
	}

	return fmt.Sprintf("%s/%s/%s", s.baseURL, owner, name), nil
}

// Delete removes the object behind url. Unknown or already-deleted URLs succeed.
func (s *LocalStore) Delete(url string) error {
	rel, ok := strings.CutPrefix(url, s.baseURL+"/")
	if !ok {
		// 不属于本存储的 URL，按幂等约定忽略
		return nil
	}

	target := filepath.Join(s.dir, filepath.FromSlash(path.Clean(rel)))
	if !strings.HasPrefix(target, filepath.Clean(s.dir)+string(os.PathSeparator)) {
		return nil
	}

	if err := os.Remove(target); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

func sanitizeSegment(segment string) string {
	segment = strings.TrimSpace(segment)
	segment = strings.ReplaceAll(segment, string(os.PathSeparator), "-")
	return strings.ReplaceAll(segment, "..", "-")
}
