package model

// ContentKind 可被点赞的内容类型
type ContentKind string

const (
	KindArticle ContentKind = "article"
	KindReview  ContentKind = "review"
	KindComment ContentKind = "comment"
)

// AllContentKinds 对账时按此顺序遍历
var AllContentKinds = []ContentKind{KindArticle, KindReview, KindComment}

// Valid 是否为可点赞的内容类型
func (k ContentKind) Valid() bool {
	switch k {
	case KindArticle, KindReview, KindComment:
		return true
	}
	return false
}

// IsRoot 是否可以作为评论树的根（文章或测评）
func (k ContentKind) IsRoot() bool {
	return k == KindArticle || k == KindReview
}

// ParseContentKind 解析路由参数中的内容类型
func ParseContentKind(s string) (ContentKind, bool) {
	k := ContentKind(s)
	return k, k.Valid()
}
