package service

import (
	"context"
	"sort"
	"strconv"
	"strings"

	"gorm.io/gorm"

	"example.com/storefront/internal/errx"
	"example.com/storefront/internal/events"
	"example.com/storefront/internal/model"
)

type CommentService interface {
	Create(ctx context.Context, in CommentInput) (CommentView, error)
	List(ctx context.Context, q CommentQuery) ([]CommentView, error)
	Get(ctx context.Context, id uint) (CommentView, error)
	Approve(ctx context.Context, id uint) (CommentView, error)
	Reject(ctx context.Context, id uint) (CommentView, error)
}

type CommentInput struct {
	ProductID uint
	Name      string
	Body      string
}

type CommentQuery struct {
	ProductID *uint
	Search    string
	Ordering  string
}

var commentOrdering = ordering{fields: []string{"created_at", "name"}, def: "-created_at"}

type commentService struct {
	db  *gorm.DB
	pub events.Publisher
}

func NewCommentService(db *gorm.DB, pub events.Publisher) CommentService {
	if pub == nil {
		pub = events.Nop{}
	}
	return &commentService{db: db, pub: pub}
}

// Create always stores the comment as waiting; callers cannot pick a status.
func (s *commentService) Create(ctx context.Context, in CommentInput) (CommentView, error) {
	c := model.Comment{
		ProductID: in.ProductID,
		Name:      strings.TrimSpace(in.Name),
		Body:      strings.TrimSpace(in.Body),
		Status:    model.CommentWaiting,
	}
	if err := c.Validate(); err != nil {
		return CommentView{}, err
	}
	db := s.db.WithContext(ctx)
	if err := exists(db, &model.Product{}, "id = ?", c.ProductID, ErrProductNotFound); err != nil {
		return CommentView{}, err
	}
	if err := db.Create(&c).Error; err != nil {
		return CommentView{}, err
	}
	return newCommentView(c), nil
}

func (s *commentService) List(ctx context.Context, q CommentQuery) ([]CommentView, error) {
	field, desc, err := commentOrdering.parse(q.Ordering)
	if err != nil {
		return nil, err
	}
	tx := s.db.WithContext(ctx).Model(&model.Comment{})
	if q.ProductID != nil {
		tx = tx.Where("product_id = ?", *q.ProductID)
	}
	if term := strings.TrimSpace(q.Search); term != "" {
		like := "%" + strings.ToLower(term) + "%"
		tx = tx.Where("(LOWER(name) LIKE ? OR LOWER(body) LIKE ?)", like, like)
	}
	var rows []model.Comment
	if err := tx.Order("id").Find(&rows).Error; err != nil {
		return nil, err
	}

	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		var c int
		switch field {
		case "created_at":
			c = a.CreatedAt.Compare(b.CreatedAt)
		case "name":
			c = strings.Compare(a.Name, b.Name)
		}
		if desc {
			c = -c
		}
		if c != 0 {
			return c < 0
		}
		return a.ID < b.ID
	})

	out := make([]CommentView, len(rows))
	for i, c := range rows {
		out[i] = newCommentView(c)
	}
	return out, nil
}

func (s *commentService) Get(ctx context.Context, id uint) (CommentView, error) {
	var c model.Comment
	if err := s.db.WithContext(ctx).First(&c, id).Error; err != nil {
		return CommentView{}, notFound(err, ErrCommentNotFound)
	}
	return newCommentView(c), nil
}

func (s *commentService) Approve(ctx context.Context, id uint) (CommentView, error) {
	return s.moderate(ctx, id, model.CommentApproved)
}

func (s *commentService) Reject(ctx context.Context, id uint) (CommentView, error) {
	return s.moderate(ctx, id, model.CommentNotApproved)
}

// moderate moves a waiting comment to the given decision. Repeating the same
// decision succeeds without change; reversing a decision is a conflict.
func (s *commentService) moderate(ctx context.Context, id uint, to model.CommentStatus) (CommentView, error) {
	if err := requireAdmin(ctx); err != nil {
		return CommentView{}, err
	}
	db := s.db.WithContext(ctx)
	res := db.Model(&model.Comment{}).
		Where("id = ? AND status = ?", id, string(model.CommentWaiting)).
		Update("status", string(to))
	if res.Error != nil {
		return CommentView{}, res.Error
	}

	var c model.Comment
	if err := db.First(&c, id).Error; err != nil {
		return CommentView{}, notFound(err, ErrCommentNotFound)
	}
	if res.RowsAffected == 0 {
		if c.Status == to {
			return newCommentView(c), nil
		}
		return CommentView{}, errx.Conflict("status", "comment already moderated as "+string(c.Status))
	}

	publish(ctx, s.pub, events.Event{
		Type:    events.CommentModerated,
		Key:     strconv.FormatUint(uint64(c.ID), 10),
		Payload: map[string]any{"comment_id": c.ID, "product_id": c.ProductID, "status": c.Status},
	})
	return newCommentView(c), nil
}
