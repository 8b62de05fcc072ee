package repositories

import (
	"context"

	"github.com/anonto42/yatube/internal/models"
	"gorm.io/gorm"
)

// PostFilter narrows a post listing; zero fields are ignored
type PostFilter struct {
	GroupID    *uint
	AuthorID   *uint
	FollowerID *uint // posts by authors this user follows
}

// PostRepository defines the interface for post data operations
type PostRepository interface {
	CreatePost(ctx context.Context, post *models.Post) error
	GetPostByID(ctx context.Context, id uint) (*models.Post, error)
	UpdatePost(ctx context.Context, post *models.Post) error
	DeletePost(ctx context.Context, id uint) error
	CountPosts(ctx context.Context, filter PostFilter) (int64, error)
	ListPosts(ctx context.Context, filter PostFilter, offset, limit int) ([]models.Post, error)
	ImageRefs(ctx context.Context) ([]string, error)
}

// PostgresPostRepository implements PostRepository on top of gorm
type PostgresPostRepository struct {
	db *gorm.DB
}

// NewPostgresPostRepository creates a new PostgresPostRepository
func NewPostgresPostRepository(db *gorm.DB) *PostgresPostRepository {
	return &PostgresPostRepository{db: db}
}

// CreatePost stores a new post; CreatedAt is assigned here and never changed
func (r *PostgresPostRepository) CreatePost(ctx context.Context, post *models.Post) error {
	return r.db.WithContext(ctx).Omit("Author", "Group").Create(post).Error
}

// GetPostByID retrieves a post with its author and group
func (r *PostgresPostRepository) GetPostByID(ctx context.Context, id uint) (*models.Post, error) {
	var post models.Post
	err := r.db.WithContext(ctx).
		Preload("Author").
		Preload("Group").
		First(&post, id).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &post, nil
}

// UpdatePost writes the mutable fields only: text, group and image
func (r *PostgresPostRepository) UpdatePost(ctx context.Context, post *models.Post) error {
	res := r.db.WithContext(ctx).Model(&models.Post{}).Where("id = ?", post.ID).Updates(map[string]any{
		"text":     post.Text,
		"group_id": post.GroupID,
		"image":    post.Image,
	})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// DeletePost deletes a post by ID; its comments go with it
func (r *PostgresPostRepository) DeletePost(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&models.Post{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresPostRepository) CountPosts(ctx context.Context, filter PostFilter) (int64, error) {
	var count int64
	err := r.filtered(ctx, filter).Model(&models.Post{}).Count(&count).Error
	return count, err
}

// ListPosts returns one window of the filtered listing in PostOrder
func (r *PostgresPostRepository) ListPosts(ctx context.Context, filter PostFilter, offset, limit int) ([]models.Post, error) {
	var posts []models.Post
	err := r.filtered(ctx, filter).
		Preload("Author").
		Preload("Group").
		Order(models.PostOrder).
		Offset(offset).
		Limit(limit).
		Find(&posts).Error
	return posts, err
}

// ImageRefs lists every image reference still held by a post
func (r *PostgresPostRepository) ImageRefs(ctx context.Context) ([]string, error) {
	var refs []string
	err := r.db.WithContext(ctx).Model(&models.Post{}).Where("image <> ''").Distinct().Pluck("image", &refs).Error
	return refs, err
}

func (r *PostgresPostRepository) filtered(ctx context.Context, filter PostFilter) *gorm.DB {
	tx := r.db.WithContext(ctx)
	if filter.GroupID != nil {
		tx = tx.Where("posts.group_id = ?", *filter.GroupID)
	}
	if filter.AuthorID != nil {
		tx = tx.Where("posts.author_id = ?", *filter.AuthorID)
	}
	if filter.FollowerID != nil {
		tx = tx.Where("posts.author_id IN (?)",
			r.db.Table("follows").Select("author_id").Where("user_id = ?", *filter.FollowerID),
		)
	}
	return tx
}
