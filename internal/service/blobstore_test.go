package service

import (
	"fmt"
	"sync"
)

// fakeBlobStore 在内存中记录上传与删除，供服务层测试使用。
type fakeBlobStore struct {
	mu      sync.Mutex
	objects map[string][]byte
	puts    []string
	deletes []string
	putErr  error
}

func newFakeBlobStore() *fakeBlobStore {
	return &fakeBlobStore{objects: make(map[string][]byte)}
}

func (f *fakeBlobStore) Put(ownerKey, filename string, data []byte) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.putErr != nil {
		return "", f.putErr
	}
	url := fmt.Sprintf("https://store/%s/%s", ownerKey, filename)
	f.objects[url] = append([]byte(nil), data...)
	f.puts = append(f.puts, url)
	return url, nil
}

func (f *fakeBlobStore) Delete(url string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.objects, url)
	f.deletes = append(f.deletes, url)
	return nil
}

func (f *fakeBlobStore) putCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.puts)
}
