package domain

import (
	"time"
)

// UserModel is the GORM model for the users table.
type UserModel struct {
	ID           uint      `gorm:"primaryKey;autoIncrement"`
	Username     string    `gorm:"type:varchar(150);uniqueIndex:uidx_users_username;not null"`
	Email        string    `gorm:"type:varchar(254);uniqueIndex:uidx_users_email;not null"`
	PasswordHash string    `gorm:"type:varchar(255);not null"`
	CreatedAt    time.Time `gorm:"autoCreateTime"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime"`
}

func (UserModel) TableName() string { return "users" }

// ToDomain converts UserModel to domain User.
func (m *UserModel) ToDomain() *User {
	return &User{
		ID:           m.ID,
		Username:     m.Username,
		Email:        m.Email,
		PasswordHash: m.PasswordHash,
		CreatedAt:    m.CreatedAt,
	}
}

// ProfileModel is the GORM model for the profiles table, one row per user.
type ProfileModel struct {
	ID          uint       `gorm:"primaryKey;autoIncrement"`
	UserID      uint       `gorm:"uniqueIndex:uidx_profiles_user;not null"`
	Name        string     `gorm:"type:varchar(64)"`
	About       string     `gorm:"type:text"`
	Country     string     `gorm:"type:varchar(64)"`
	DateOfBirth *time.Time `gorm:"type:date"`
	User        *UserModel `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	UpdatedAt   time.Time  `gorm:"autoUpdateTime"`
}

func (ProfileModel) TableName() string { return "profiles" }

func (m *ProfileModel) ToDomain() *Profile {
	return &Profile{
		UserID:      m.UserID,
		Name:        m.Name,
		About:       m.About,
		Country:     m.Country,
		DateOfBirth: m.DateOfBirth,
	}
}

// FollowModel is the GORM model for the follows table.
type FollowModel struct {
	ID         uint       `gorm:"primaryKey;autoIncrement"`
	FollowerID uint       `gorm:"column:follower_id;not null;uniqueIndex:uidx_follow_pair,priority:1"`
	FollowedID uint       `gorm:"column:followed_id;not null;uniqueIndex:uidx_follow_pair,priority:2;index:idx_follows_followed"`
	CreatedAt  time.Time  `gorm:"autoCreateTime"`
	Follower   *UserModel `gorm:"foreignKey:FollowerID;constraint:OnDelete:CASCADE"`
	Followed   *UserModel `gorm:"foreignKey:FollowedID;constraint:OnDelete:CASCADE"`
}

func (FollowModel) TableName() string { return "follows" }

// PostModel is the GORM model for the posts table.
type PostModel struct {
	ID        uint       `gorm:"primaryKey;autoIncrement"`
	UserID    uint       `gorm:"not null;index:idx_posts_user_created,priority:1"`
	Content   string     `gorm:"type:text;not null"`
	CreatedAt time.Time  `gorm:"autoCreateTime;index:idx_posts_user_created,priority:2;index:idx_posts_created"`
	UpdatedAt time.Time  `gorm:"autoUpdateTime"`
	Author    *UserModel `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
}

func (PostModel) TableName() string { return "posts" }

func (m *PostModel) ToDomain() *Post {
	p := &Post{
		ID:        m.ID,
		AuthorID:  m.UserID,
		Content:   m.Content,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
	if m.Author != nil {
		p.Author = m.Author.Username
	}
	return p
}

// CommentModel is the GORM model for the comments table.
type CommentModel struct {
	ID        uint       `gorm:"primaryKey;autoIncrement"`
	UserID    uint       `gorm:"not null;index"`
	PostID    uint       `gorm:"not null;index:idx_comments_post_created,priority:1"`
	Content   string     `gorm:"type:text;not null"`
	CreatedAt time.Time  `gorm:"autoCreateTime;index:idx_comments_post_created,priority:2"`
	UpdatedAt time.Time  `gorm:"autoUpdateTime"`
	Author    *UserModel `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	Post      *PostModel `gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE"`
}

func (CommentModel) TableName() string { return "comments" }

func (m *CommentModel) ToDomain() *Comment {
	c := &Comment{
		ID:        m.ID,
		PostID:    m.PostID,
		AuthorID:  m.UserID,
		Content:   m.Content,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
	if m.Author != nil {
		c.Author = m.Author.Username
	}
	return c
}

// ReactionModel is the GORM model for the reactions table.
// Exactly one of PostID and CommentID is set; NULLs are distinct in the
// unique indexes, so each index only constrains its own target type.
type ReactionModel struct {
	ID        uint          `gorm:"primaryKey;autoIncrement"`
	UserID    uint          `gorm:"not null;uniqueIndex:uidx_reaction_user_post,priority:1;uniqueIndex:uidx_reaction_user_comment,priority:1"`
	PostID    *uint         `gorm:"uniqueIndex:uidx_reaction_user_post,priority:2;index:idx_reactions_post"`
	CommentID *uint         `gorm:"uniqueIndex:uidx_reaction_user_comment,priority:2;index:idx_reactions_comment;check:chk_reactions_one_target,(post_id IS NULL) <> (comment_id IS NULL)"`
	Kind      ReactionKind  `gorm:"type:smallint;not null;default:1"`
	CreatedAt time.Time     `gorm:"autoCreateTime"`
	UpdatedAt time.Time     `gorm:"autoUpdateTime"`
	User      *UserModel    `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	Post      *PostModel    `gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE"`
	Comment   *CommentModel `gorm:"foreignKey:CommentID;constraint:OnDelete:CASCADE"`
}

func (ReactionModel) TableName() string { return "reactions" }

// Target returns the post or comment the reaction points at.
func (m *ReactionModel) Target() Target {
	if m.CommentID != nil {
		return CommentTarget(*m.CommentID)
	}
	if m.PostID != nil {
		return PostTarget(*m.PostID)
	}
	return Target{}
}

func (m *ReactionModel) ToDomain() *Reaction {
	return &Reaction{
		ID:        m.ID,
		UserID:    m.UserID,
		Target:    m.Target(),
		Kind:      m.Kind,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

// NewReactionModel builds a ledger row for target.
func NewReactionModel(userID uint, target Target, kind ReactionKind) *ReactionModel {
	m := &ReactionModel{UserID: userID, Kind: kind}
	id := target.ID
	if target.Kind == TargetComment {
		m.CommentID = &id
	} else {
		m.PostID = &id
	}
	return m
}

// Models lists every table in migration order.
func Models() []interface{} {
	return []interface{}{
		&UserModel{},
		&ProfileModel{},
		&FollowModel{},
		&PostModel{},
		&CommentModel{},
		&ReactionModel{},
	}
}
