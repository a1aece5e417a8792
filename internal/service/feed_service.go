package service

import (
	"context"
	"errors"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/jserwatka/network/internal/domain"
	"github.com/jserwatka/network/internal/repository"
	"github.com/jserwatka/network/pkg/log"
)

// maxFanOut bounds concurrent per-followee post queries.
const maxFanOut = 8

// feedService implements FeedService.
type feedService struct {
	posts     repository.PostRepository
	comments  repository.CommentRepository
	reactions repository.ReactionRepository
	users     repository.UserRepository
	graph     repository.FollowRepository
	social    SocialGraphService
}

// FeedDeps groups the collaborators of the feed composer.
type FeedDeps struct {
	Posts     repository.PostRepository
	Comments  repository.CommentRepository
	Reactions repository.ReactionRepository
	Users     repository.UserRepository
	Graph     repository.FollowRepository
	Social    SocialGraphService
}

// NewFeedService creates a new FeedService.
func NewFeedService(deps FeedDeps) FeedService {
	return &feedService{
		posts:     deps.Posts,
		comments:  deps.Comments,
		reactions: deps.Reactions,
		users:     deps.Users,
		graph:     deps.Graph,
		social:    deps.Social,
	}
}

// Global returns a page of every post, newest first.
func (s *feedService) Global(ctx context.Context, viewerID uint, page int) (*domain.FeedPage, error) {
	total, err := s.posts.Count(ctx)
	if err != nil {
		return nil, err
	}

	w := newPageWindow(page, total)
	posts, err := s.posts.List(ctx, w.Offset, w.Size)
	if err != nil {
		return nil, err
	}

	return s.compose(ctx, domain.ScopeGlobal, viewerID, posts, w, total)
}

// Author returns the profile page of authorID with a page of their posts.
func (s *feedService) Author(ctx context.Context, viewerID, authorID uint, page int) (*domain.AuthorFeed, error) {
	author, err := s.users.GetByID(ctx, authorID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	author.Email = ""

	profile, err := s.users.GetProfile(ctx, authorID)
	switch {
	case errors.Is(err, repository.ErrUserNotFound):
		profile = &domain.Profile{UserID: authorID}
	case err != nil:
		return nil, err
	}

	total, err := s.posts.CountByAuthor(ctx, authorID)
	if err != nil {
		return nil, err
	}
	w := newPageWindow(page, total)
	posts, err := s.posts.ListByAuthor(ctx, authorID, w.Offset, w.Size)
	if err != nil {
		return nil, err
	}
	feed, err := s.compose(ctx, domain.ScopeAuthor, viewerID, posts, w, total)
	if err != nil {
		return nil, err
	}

	followers, err := s.social.Followers(ctx, authorID)
	if err != nil {
		return nil, err
	}
	following, err := s.social.Following(ctx, authorID)
	if err != nil {
		return nil, err
	}
	counts, err := s.social.Counts(ctx, authorID)
	if err != nil {
		return nil, err
	}
	isFollowing, err := s.social.IsFollowing(ctx, viewerID, authorID)
	if err != nil {
		return nil, err
	}

	return &domain.AuthorFeed{
		Author:      *author,
		Profile:     *profile,
		Followers:   followers,
		Following:   following,
		Counts:      counts,
		IsFollowing: isFollowing,
		Feed:        feed,
	}, nil
}

// Following returns a page of posts by everyone viewerID follows. Each
// followee's posts are fetched concurrently, then the union is re-sorted so
// the order holds across authors.
func (s *feedService) Following(ctx context.Context, viewerID uint, page int) (*domain.FeedPage, error) {
	followees, err := s.graph.FolloweeIDs(ctx, viewerID)
	if err != nil {
		return nil, err
	}

	perAuthor := make([][]*domain.Post, len(followees))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxFanOut)
	for i, id := range followees {
		g.Go(func() error {
			posts, err := s.posts.AllByAuthor(gctx, id)
			if err != nil {
				return err
			}
			perAuthor[i] = posts
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		l := log.Ctx(ctx)
		l.Error().Err(err).Uint(log.FieldUserID, viewerID).Msg("failed to collect followee posts")
		return nil, err
	}

	var merged []*domain.Post
	for _, posts := range perAuthor {
		merged = append(merged, posts...)
	}
	sortNewestFirst(merged)

	total := int64(len(merged))
	w := newPageWindow(page, total)
	start, end := w.bounds(len(merged))

	return s.compose(ctx, domain.ScopeFollowing, viewerID, merged[start:end], w, total)
}

func sortNewestFirst(posts []*domain.Post) {
	sort.SliceStable(posts, func(i, j int) bool {
		if !posts[i].CreatedAt.Equal(posts[j].CreatedAt) {
			return posts[i].CreatedAt.After(posts[j].CreatedAt)
		}
		return posts[i].ID > posts[j].ID
	})
}

func (s *feedService) compose(ctx context.Context, scope domain.FeedScope, viewerID uint, posts []*domain.Post, w pageWindow, total int64) (*domain.FeedPage, error) {
	items, err := s.annotate(ctx, viewerID, posts)
	if err != nil {
		return nil, err
	}
	return &domain.FeedPage{
		Scope:       scope,
		Items:       items,
		Page:        w.Page,
		PageSize:    w.Size,
		TotalItems:  total,
		TotalPages:  w.TotalPages,
		HasNext:     w.Page < w.TotalPages,
		HasPrevious: w.Page > 1,
	}, nil
}

// annotate attaches comment counts, tallies, viewer reactions and the comment
// thread to each post using one batched query per concern.
func (s *feedService) annotate(ctx context.Context, viewerID uint, posts []*domain.Post) ([]domain.FeedEntry, error) {
	entries := make([]domain.FeedEntry, 0, len(posts))
	if len(posts) == 0 {
		return entries, nil
	}

	postIDs := make([]uint, len(posts))
	for i, p := range posts {
		postIDs[i] = p.ID
	}

	counts, err := s.comments.CountByPosts(ctx, postIDs)
	if err != nil {
		return nil, err
	}
	tallies, err := s.reactions.Tallies(ctx, domain.TargetPost, postIDs)
	if err != nil {
		return nil, err
	}
	mine, err := s.reactions.UserReactions(ctx, viewerID, domain.TargetPost, postIDs)
	if err != nil {
		return nil, err
	}
	threads, err := s.comments.ListByPosts(ctx, postIDs)
	if err != nil {
		return nil, err
	}

	var commentIDs []uint
	for _, thread := range threads {
		for _, c := range thread {
			commentIDs = append(commentIDs, c.ID)
		}
	}
	commentTallies, err := s.reactions.Tallies(ctx, domain.TargetComment, commentIDs)
	if err != nil {
		return nil, err
	}
	commentMine, err := s.reactions.UserReactions(ctx, viewerID, domain.TargetComment, commentIDs)
	if err != nil {
		return nil, err
	}

	for _, p := range posts {
		entry := domain.FeedEntry{
			Post:           *p,
			CommentCount:   counts[p.ID],
			Tally:          orEmpty(tallies[p.ID]),
			ViewerReaction: kindPtr(mine, p.ID),
			Comments:       make([]domain.CommentEntry, 0, len(threads[p.ID])),
		}
		for _, c := range threads[p.ID] {
			entry.Comments = append(entry.Comments, domain.CommentEntry{
				Comment:        *c,
				Tally:          orEmpty(commentTallies[c.ID]),
				ViewerReaction: kindPtr(commentMine, c.ID),
			})
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func orEmpty(t domain.Tally) domain.Tally {
	if t == nil {
		return domain.Tally{}
	}
	return t
}

func kindPtr(m map[uint]domain.ReactionKind, id uint) *domain.ReactionKind {
	k, ok := m[id]
	if !ok {
		return nil
	}
	return &k
}

var _ FeedService = (*feedService)(nil)
