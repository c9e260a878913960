package cache

import (
	"strconv"
	"time"

	"github.com/go-redis/redis"
)

const (
	articleListKey = "articles:all"
	likeRankKey    = "rank:article:likes"
	articleListTTL = 5 * time.Minute
)

// ArticleCache 基于 Redis 缓存文章列表并维护点赞排行榜。
// nil 实例的所有方法都是安全的无操作，服务层无需判空。
type ArticleCache struct {
	client *redis.Client
}

// RankEntry 是排行榜中的一项。
type RankEntry struct {
	ArticleID uint  `json:"articleId"`
	Score     int64 `json:"score"`
}

// New 连接 Redis 并做一次连通性检查。
func New(addr, password string, db int) (*ArticleCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if _, err := client.Ping().Result(); err != nil {
		return nil, err
	}
	return &ArticleCache{client: client}, nil
}

// GetArticleList 返回缓存的文章列表 JSON，未命中返回 false。
func (c *ArticleCache) GetArticleList() ([]byte, bool) {
	if c == nil {
		return nil, false
	}
	data, err := c.client.Get(articleListKey).Bytes()
	if err != nil {
		return nil, false
	}
	return data, true
}

// SetArticleList 写入文章列表 JSON。
func (c *ArticleCache) SetArticleList(data []byte) {
	if c == nil {
		return
	}
	c.client.Set(articleListKey, data, articleListTTL)
}

// InvalidateArticleList 在任何文章变更后丢弃列表缓存。
func (c *ArticleCache) InvalidateArticleList() {
	if c == nil {
		return
	}
	c.client.Del(articleListKey)
}

// BumpLikeRank 按点赞/取消点赞调整排行榜分值。
func (c *ArticleCache) BumpLikeRank(articleID uint, liked bool) {
	if c == nil {
		return
	}
	delta := float64(1)
	if !liked {
		delta = -1
	}
	c.client.ZIncrBy(likeRankKey, delta, strconv.FormatUint(uint64(articleID), 10))
}

// TopLiked 返回排行榜前 n 篇文章，缓存不可用时返回空列表。
func (c *ArticleCache) TopLiked(n int) []RankEntry {
	if c == nil || n <= 0 {
		return nil
	}
	zres, err := c.client.ZRevRangeWithScores(likeRankKey, 0, int64(n-1)).Result()
	if err != nil {
		return nil
	}

	entries := make([]RankEntry, 0, len(zres))
	for _, z := range zres {
		member, ok := z.Member.(string)
		if !ok {
			continue
		}
		id, err := strconv.ParseUint(member, 10, 32)
		if err != nil {
			continue
		}
		entries = append(entries, RankEntry{ArticleID: uint(id), Score: int64(z.Score)})
	}
	return entries
}
