// Package services holds the blog's use cases. Every operation takes the
// viewer explicitly; nil means an anonymous visitor.
package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/anonto42/yatube/internal/forms"
	"github.com/anonto42/yatube/internal/models"
	"github.com/anonto42/yatube/internal/pagination"
	"github.com/anonto42/yatube/internal/repositories"
	"github.com/anonto42/yatube/internal/storage"
	"github.com/rs/zerolog/log"
)

var (
	ErrNotAuthor     = errors.New("only the author may change this post")
	ErrLoginRequired = errors.New("login required")
)

// PostPage is one page of a post listing
type PostPage = pagination.Page[models.Post]

// Blog implements the post, comment and follow use cases
type Blog struct {
	users    repositories.UserRepository
	groups   repositories.GroupRepository
	posts    repositories.PostRepository
	comments repositories.CommentRepository
	follows  repositories.FollowRepository
	images   storage.ImageStorage
}

func NewBlog(
	users repositories.UserRepository,
	groups repositories.GroupRepository,
	posts repositories.PostRepository,
	comments repositories.CommentRepository,
	follows repositories.FollowRepository,
	images storage.ImageStorage,
) *Blog {
	return &Blog{
		users:    users,
		groups:   groups,
		posts:    posts,
		comments: comments,
		follows:  follows,
		images:   images,
	}
}

// Profile is what the author page shows
type Profile struct {
	Author    *models.User
	Page      *PostPage
	Following bool
	Followers int64
	Follows   int64
}

// PostDetail is a single post with its discussion
type PostDetail struct {
	Post        *models.Post
	Comments    []models.Comment
	AuthorPosts int64
}

func (b *Blog) page(ctx context.Context, filter repositories.PostFilter, number int) (*PostPage, error) {
	count, err := b.posts.CountPosts(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("count posts: %w", err)
	}
	w := pagination.Resolve(count, number, pagination.PerPage)
	posts, err := b.posts.ListPosts(ctx, filter, w.Offset, w.Limit)
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	return pagination.NewPage(posts, w, count), nil
}

// ListPosts pages through every post, newest first
func (b *Blog) ListPosts(ctx context.Context, number int) (*PostPage, error) {
	return b.page(ctx, repositories.PostFilter{}, number)
}

// GroupPosts pages through the posts of the group with the given slug
func (b *Blog) GroupPosts(ctx context.Context, slug string, number int) (*models.Group, *PostPage, error) {
	group, err := b.groups.GetGroupBySlug(ctx, slug)
	if err != nil {
		return nil, nil, fmt.Errorf("group %q: %w", slug, err)
	}
	page, err := b.page(ctx, repositories.PostFilter{GroupID: &group.ID}, number)
	if err != nil {
		return nil, nil, err
	}
	return group, page, nil
}

func (b *Blog) Profile(ctx context.Context, viewer *models.User, username string, number int) (*Profile, error) {
	author, err := b.users.GetUserByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("user %q: %w", username, err)
	}
	page, err := b.page(ctx, repositories.PostFilter{AuthorID: &author.ID}, number)
	if err != nil {
		return nil, err
	}

	profile := &Profile{Author: author, Page: page}
	if viewer != nil {
		if profile.Following, err = b.follows.IsFollowing(ctx, viewer.ID, author.ID); err != nil {
			return nil, fmt.Errorf("check follow: %w", err)
		}
	}
	if profile.Followers, err = b.follows.CountFollowers(ctx, author.ID); err != nil {
		return nil, fmt.Errorf("count followers: %w", err)
	}
	if profile.Follows, err = b.follows.CountFollowing(ctx, author.ID); err != nil {
		return nil, fmt.Errorf("count following: %w", err)
	}
	return profile, nil
}

func (b *Blog) PostDetail(ctx context.Context, id uint) (*PostDetail, error) {
	post, err := b.posts.GetPostByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("post %d: %w", id, err)
	}
	comments, err := b.comments.GetCommentsByPostID(ctx, post.ID)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	count, err := b.posts.CountPosts(ctx, repositories.PostFilter{AuthorID: &post.AuthorID})
	if err != nil {
		return nil, fmt.Errorf("count author posts: %w", err)
	}
	return &PostDetail{Post: post, Comments: comments, AuthorPosts: count}, nil
}

// Groups lists the choices offered by the post form
func (b *Blog) Groups(ctx context.Context) ([]models.Group, error) {
	groups, err := b.groups.ListGroups(ctx)
	if err != nil {
		return nil, fmt.Errorf("list groups: %w", err)
	}
	return groups, nil
}

// CreatePost stores a validated form as a new post by viewer
func (b *Blog) CreatePost(ctx context.Context, viewer *models.User, form *forms.PostForm) (*models.Post, error) {
	if viewer == nil {
		return nil, ErrLoginRequired
	}
	post := &models.Post{AuthorID: viewer.ID}
	form.Apply(post)
	if err := b.applyImage(ctx, post, form); err != nil {
		return nil, err
	}
	if err := b.posts.CreatePost(ctx, post); err != nil {
		return nil, fmt.Errorf("create post: %w", err)
	}
	log.Debug().Uint("post", post.ID).Str("author", viewer.Username).Msg("Post created")
	return post, nil
}

// EditablePost loads a post for editing. Anyone but its author gets
// ErrNotAuthor together with the post, so the caller can send them back to
// the post page.
func (b *Blog) EditablePost(ctx context.Context, viewer *models.User, id uint) (*models.Post, error) {
	if viewer == nil {
		return nil, ErrLoginRequired
	}
	post, err := b.posts.GetPostByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("post %d: %w", id, err)
	}
	if post.AuthorID != viewer.ID {
		return post, ErrNotAuthor
	}
	return post, nil
}

// EditPost writes a validated form onto a post the viewer owns
func (b *Blog) EditPost(ctx context.Context, viewer *models.User, post *models.Post, form *forms.PostForm) error {
	if viewer == nil {
		return ErrLoginRequired
	}
	if post.AuthorID != viewer.ID {
		return ErrNotAuthor
	}
	form.Apply(post)
	if err := b.applyImage(ctx, post, form); err != nil {
		return err
	}
	if err := b.posts.UpdatePost(ctx, post); err != nil {
		return fmt.Errorf("update post %d: %w", post.ID, err)
	}
	return nil
}

// applyImage stores a new upload or drops the current image. Replaced
// files are left to the orphan sweep.
func (b *Blog) applyImage(ctx context.Context, post *models.Post, form *forms.PostForm) error {
	if form.Image == nil {
		if form.ImageClear {
			post.Image = ""
		}
		return nil
	}
	file, err := form.Image.Open()
	if err != nil {
		return fmt.Errorf("open upload: %w", err)
	}
	defer file.Close()

	ref, err := b.images.Save(ctx, form.ImageExt, file)
	if err != nil {
		return fmt.Errorf("save image: %w", err)
	}
	post.Image = ref
	return nil
}

// AddComment attaches a validated comment by viewer to the post
func (b *Blog) AddComment(ctx context.Context, viewer *models.User, postID uint, form *forms.CommentForm) (*models.Comment, error) {
	if viewer == nil {
		return nil, ErrLoginRequired
	}
	post, err := b.posts.GetPostByID(ctx, postID)
	if err != nil {
		return nil, fmt.Errorf("post %d: %w", postID, err)
	}
	comment := &models.Comment{PostID: post.ID, AuthorID: viewer.ID, Text: form.Text}
	if err := b.comments.CreateComment(ctx, comment); err != nil {
		return nil, fmt.Errorf("create comment: %w", err)
	}
	return comment, nil
}

// FollowFeed pages through the posts of every author viewer follows
func (b *Blog) FollowFeed(ctx context.Context, viewer *models.User, number int) (*PostPage, error) {
	if viewer == nil {
		return nil, ErrLoginRequired
	}
	return b.page(ctx, repositories.PostFilter{FollowerID: &viewer.ID}, number)
}

// Follow makes viewer follow the named author. Following yourself and
// following twice are silently ignored.
func (b *Blog) Follow(ctx context.Context, viewer *models.User, username string) (*models.User, error) {
	if viewer == nil {
		return nil, ErrLoginRequired
	}
	author, err := b.users.GetUserByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("user %q: %w", username, err)
	}
	if author.ID == viewer.ID {
		return author, nil
	}
	following, err := b.follows.IsFollowing(ctx, viewer.ID, author.ID)
	if err != nil {
		return nil, fmt.Errorf("check follow: %w", err)
	}
	if following {
		return author, nil
	}
	if err := b.follows.CreateFollow(ctx, &models.Follow{UserID: viewer.ID, AuthorID: author.ID}); err != nil {
		return nil, fmt.Errorf("create follow: %w", err)
	}
	return author, nil
}

func (b *Blog) Unfollow(ctx context.Context, viewer *models.User, username string) (*models.User, error) {
	if viewer == nil {
		return nil, ErrLoginRequired
	}
	author, err := b.users.GetUserByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("user %q: %w", username, err)
	}
	if err := b.follows.DeleteFollow(ctx, viewer.ID, author.ID); err != nil {
		return nil, fmt.Errorf("delete follow: %w", err)
	}
	return author, nil
}

// CreateGroup stores a validated group form. A taken slug comes back as
// repositories.ErrDuplicateSlug.
func (b *Blog) CreateGroup(ctx context.Context, form *forms.GroupForm) (*models.Group, error) {
	group := form.Group()
	if err := b.groups.CreateGroup(ctx, group); err != nil {
		return nil, fmt.Errorf("create group: %w", err)
	}
	return group, nil
}

// DeleteGroup removes a group; its posts lose their group
func (b *Blog) DeleteGroup(ctx context.Context, slug string) error {
	group, err := b.groups.GetGroupBySlug(ctx, slug)
	if err != nil {
		return fmt.Errorf("group %q: %w", slug, err)
	}
	if err := b.groups.DeleteGroup(ctx, group.ID); err != nil {
		return fmt.Errorf("delete group %q: %w", slug, err)
	}
	return nil
}
