package service

import (
	"math"
	"sort"

	"engage-go/internal/api/dto"
	"engage-go/internal/model"
	"engage-go/internal/repository"
)

// FeedRequest 评论列表请求；ViewerID 为 0 表示匿名
type FeedRequest struct {
	Kind     model.ContentKind
	RootID   int64
	Page     int
	PageSize int
	Sort     model.FeedSort
	ViewerID int64
	Tree     bool
}

// FeedOptions 分页默认值与上限
type FeedOptions struct {
	DefaultPageSize int
	MaxPageSize     int
}

type FeedService struct {
	commentRepo *repository.CommentRepository
	likeRepo    *repository.LikeRepository
	userRepo    *repository.UserRepository
	gate        *ContentGate
	opts        FeedOptions
}

func NewFeedService(
	commentRepo *repository.CommentRepository,
	likeRepo *repository.LikeRepository,
	userRepo *repository.UserRepository,
	gate *ContentGate,
	opts FeedOptions,
) *FeedService {
	if opts.DefaultPageSize <= 0 {
		opts.DefaultPageSize = 5
	}
	if opts.MaxPageSize < opts.DefaultPageSize {
		opts.MaxPageSize = opts.DefaultPageSize
	}
	return &FeedService{
		commentRepo: commentRepo,
		likeRepo:    likeRepo,
		userRepo:    userRepo,
		gate:        gate,
		opts:        opts,
	}
}

// feedItem 组装过程中的一条评论
type feedItem struct {
	comment    model.Comment
	likes      int64
	backfilled bool
}

// Page 分页获取评论，主评论与回复统一计入同一条扁平分页流
func (s *FeedService) Page(req *FeedRequest) (*dto.FeedData, error) {
	s.normalize(req)

	if _, err := s.gate.Root(req.Kind, req.RootID); err != nil {
		return nil, err
	}

	total, err := s.commentRepo.CountByRoot(req.Kind, req.RootID)
	if err != nil {
		return nil, err
	}

	skip := (req.Page - 1) * req.PageSize
	rows, err := s.commentRepo.ListPageWithLiveLikes(req.Kind, req.RootID, req.Sort, skip, req.PageSize)
	if err != nil {
		return nil, err
	}

	items := make([]feedItem, 0, len(rows))
	pageIDs := make([]int64, 0, len(rows))
	for _, r := range rows {
		items = append(items, feedItem{comment: r.Comment, likes: r.LiveLikes})
		pageIDs = append(pageIDs, r.ID)
	}

	items, err = s.backfill(req, items, pageIDs)
	if err != nil {
		return nil, err
	}

	infos, err := s.annotate(req.ViewerID, items)
	if err != nil {
		return nil, err
	}
	applyDepth(infos)

	data := &dto.FeedData{
		Comments:   infos,
		Pagination: paginate(req.Page, req.PageSize, total),
	}
	if req.Tree {
		data.Tree = BuildForest(infos)
	}
	return data, nil
}

func (s *FeedService) normalize(req *FeedRequest) {
	if req.Page < 1 {
		req.Page = 1
	}
	if req.PageSize < 1 {
		req.PageSize = s.opts.DefaultPageSize
	}
	if req.PageSize > s.opts.MaxPageSize {
		req.PageSize = s.opts.MaxPageSize
	}
	// 偏移量 (Page-1)*PageSize 不超过 int32，超出的页同样是空页
	if maxPage := math.MaxInt32/req.PageSize + 1; req.Page > maxPage {
		req.Page = maxPage
	}
	if req.Sort != model.SortLikes {
		req.Sort = model.SortRecent
	}
}

// backfill 补齐页外仍有回复的墓碑，空页不补，补入的墓碑不计入分页；有补入时整体按时间倒序重排
func (s *FeedService) backfill(req *FeedRequest, items []feedItem, pageIDs []int64) ([]feedItem, error) {
	if len(items) == 0 {
		return items, nil
	}
	tombs, err := s.commentRepo.ListTombstonesWithReplies(req.Kind, req.RootID, pageIDs)
	if err != nil {
		return nil, err
	}
	if len(tombs) == 0 {
		return items, nil
	}

	for _, t := range tombs {
		items = append(items, feedItem{comment: t, backfilled: true})
	}
	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i].comment, items[j].comment
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return a.ID > b.ID
	})
	return items, nil
}

// annotate 填充作者名、当前用户点赞状态与删除权限
func (s *FeedService) annotate(viewerID int64, items []feedItem) ([]dto.CommentInfo, error) {
	ids := make([]int64, 0, len(items))
	authorIDs := make([]int64, 0, len(items))
	seenAuthor := make(map[int64]bool, len(items))
	for _, it := range items {
		ids = append(ids, it.comment.ID)
		if !seenAuthor[it.comment.AuthorID] {
			seenAuthor[it.comment.AuthorID] = true
			authorIDs = append(authorIDs, it.comment.AuthorID)
		}
	}

	liked := map[int64]bool{}
	if viewerID > 0 {
		var err error
		if liked, err = s.likeRepo.BatchCheckLiked(viewerID, model.KindComment, ids); err != nil {
			return nil, err
		}
	}

	names, err := s.userRepo.UsernamesByIDs(authorIDs)
	if err != nil {
		return nil, err
	}

	infos := make([]dto.CommentInfo, 0, len(items))
	for i := range items {
		it := &items[i]
		info := toCommentInfo(&it.comment, it.likes)
		info.AuthorName = names[it.comment.AuthorID]
		info.IsLiked = liked[it.comment.ID]
		info.CanDelete = viewerID > 0 && viewerID == it.comment.AuthorID
		info.Backfilled = it.backfilled
		infos = append(infos, *info)
	}
	return infos, nil
}

// applyDepth 主评论深度为 0；父评论不在当前结果集中时深度按 1 处理，否则为父评论深度 + 1
func applyDepth(infos []dto.CommentInfo) {
	index := make(map[int64]int, len(infos))
	for i := range infos {
		index[infos[i].ID] = i
	}

	depth := make(map[int64]int, len(infos))
	var resolve func(i int) int
	resolve = func(i int) int {
		c := &infos[i]
		if d, ok := depth[c.ID]; ok {
			return d
		}
		if c.ParentCommentID == nil {
			depth[c.ID] = 0
			return 0
		}
		p, ok := index[*c.ParentCommentID]
		if !ok {
			depth[c.ID] = 1
			return 1
		}
		// 先占位，脏数据成环时不会无限递归
		depth[c.ID] = 1
		d := resolve(p) + 1
		depth[c.ID] = d
		return d
	}

	for i := range infos {
		infos[i].ReplyDepth = resolve(i)
		if pid := infos[i].ParentCommentID; pid != nil {
			_, infos[i].ParentLoaded = index[*pid]
		}
	}
}

// BuildForest 按 parent_comment_id 折叠成森林，父评论未加载的节点作为根
func BuildForest(infos []dto.CommentInfo) []*dto.CommentNode {
	nodes := make(map[int64]*dto.CommentNode, len(infos))
	for i := range infos {
		nodes[infos[i].ID] = &dto.CommentNode{CommentInfo: infos[i], Replies: []*dto.CommentNode{}}
	}

	roots := make([]*dto.CommentNode, 0)
	for i := range infos {
		node := nodes[infos[i].ID]
		if pid := infos[i].ParentCommentID; pid != nil && *pid != infos[i].ID {
			if parent, ok := nodes[*pid]; ok {
				parent.Replies = append(parent.Replies, node)
				continue
			}
		}
		roots = append(roots, node)
	}
	return roots
}

func paginate(page, pageSize int, total int64) dto.Pagination {
	totalPages := int64(0)
	if pageSize > 0 {
		totalPages = (total + int64(pageSize) - 1) / int64(pageSize)
	}
	return dto.Pagination{
		CurrentPage:   page,
		PageSize:      pageSize,
		TotalPages:    totalPages,
		HasNextPage:   int64(page)*int64(pageSize) < total,
		TotalComments: total,
	}
}
