package storage

// BlobStore 抽象对象存储：Put 写入并返回可访问的 URL，Delete 按 URL 删除。
// Delete 必须幂等，对象不存在时视为成功。
type BlobStore interface {
	Put(ownerKey, filename string, data []byte) (string, error)
	Delete(url string) error
}
