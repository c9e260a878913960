package service

// ImageReconciliation 是一次图片集合调和的结果。
// Final 为文章最终挂载的 URL 集合，Delete 为需要物理删除的对象 URL。
// 两者不相交。
type ImageReconciliation struct {
	Final  []string
	Delete []string
}

// ReconcileImages 根据现有图片、显式删除请求与本次新产生的 URL 计算最终集合：
//
//	keep   = (existing ∪ produced) − requestedDeletions
//	delete = (existing − keep) ∪ (requestedDeletions ∩ produced)
//
// 同一请求中既被删除又被重新提交的 URL，以删除为准。
// 对不存在图片的删除请求按无操作接受。纯函数，幂等，保持输入顺序：
// 先保留的现有图片，再新增的 URL。
func ReconcileImages(existing, requestedDeletions, produced []string) ImageReconciliation {
	drop := make(map[string]bool, len(requestedDeletions))
	for _, url := range requestedDeletions {
		drop[url] = true
	}

	kept := make(map[string]bool, len(existing)+len(produced))
	final := make([]string, 0, len(existing)+len(produced))
	for _, url := range existing {
		if drop[url] || kept[url] {
			continue
		}
		kept[url] = true
		final = append(final, url)
	}
	for _, url := range produced {
		if drop[url] || kept[url] {
			continue
		}
		kept[url] = true
		final = append(final, url)
	}

	removed := make(map[string]bool)
	remove := make([]string, 0)
	for _, url := range existing {
		if !kept[url] && !removed[url] {
			removed[url] = true
			remove = append(remove, url)
		}
	}
	for _, url := range produced {
		if drop[url] && !removed[url] {
			removed[url] = true
			remove = append(remove, url)
		}
	}

	return ImageReconciliation{Final: final, Delete: remove}
}
