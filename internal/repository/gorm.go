package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"inkwell/internal/models"
)

// NewGormRepositories backs every repository with a gorm connection.
// The connection must be opened with TranslateError so unique violations
// surface as gorm.ErrDuplicatedKey.
func NewGormRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		Article:  &gormArticles{db: db},
		Comment:  &gormComments{db: db},
		Reaction: &gormReactions{db: db},
		User:     &gormUsers{db: db},
	}
}

func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return ErrDuplicate
	}
	return err
}

// toggleRow deletes the reaction if present, creates it otherwise.
func toggleRow(tx *gorm.DB, kind models.ReactionKind, targetID, userID string) (bool, error) {
	var existing models.Reaction
	err := tx.Where("user_id = ? AND kind = ? AND target_id = ?", userID, kind, targetID).First(&existing).Error
	if err == nil {
		return false, tx.Delete(&existing).Error
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return false, err
	}
	return true, tx.Create(&models.Reaction{UserID: userID, Kind: kind, TargetID: targetID}).Error
}

func counterExpr(column string, up bool) clause.Expr {
	if up {
		return gorm.Expr(column + " + 1")
	}
	return gorm.Expr("GREATEST(" + column + " - 1, 0)")
}

type gormArticles struct{ db *gorm.DB }

func (r *gormArticles) List(ctx context.Context) ([]models.Article, error) {
	var articles []models.Article
	err := r.db.WithContext(ctx).Preload("Author").
		Order("created_at DESC").
		Find(&articles).Error
	return articles, err
}

func (r *gormArticles) GetByID(ctx context.Context, id string) (*models.Article, error) {
	var article models.Article
	if err := r.db.WithContext(ctx).Preload("Author").First(&article, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &article, nil
}

func (r *gormArticles) Create(ctx context.Context, article *models.Article) error {
	return translate(r.db.WithContext(ctx).Omit(clause.Associations).Create(article).Error)
}

func (r *gormArticles) ToggleReaction(ctx context.Context, kind models.ReactionKind, articleID, userID string) (*models.Article, bool, error) {
	column := "likes"
	if kind == models.ReactionArticleBookmark {
		column = "bookmarks"
	}

	var (
		article models.Article
		active  bool
	)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Row lock serializes concurrent toggles on the same article.
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Select("id").First(&article, "id = ?", articleID).Error; err != nil {
			return err
		}

		var err error
		if active, err = toggleRow(tx, kind, articleID, userID); err != nil {
			return err
		}

		if err := tx.Model(&models.Article{}).Where("id = ?", articleID).
			UpdateColumn(column, counterExpr(column, active)).Error; err != nil {
			return err
		}

		return tx.Preload("Author").First(&article, "id = ?", articleID).Error
	})
	if err != nil {
		return nil, false, translate(err)
	}
	return &article, active, nil
}

func (r *gormArticles) IncrementViews(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Model(&models.Article{}).Where("id = ?", id).
		UpdateColumn("views", gorm.Expr("views + 1"))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *gormArticles) UpdateScore(ctx context.Context, id string, score float64) error {
	return r.db.WithContext(ctx).Model(&models.Article{}).Where("id = ?", id).
		UpdateColumn("score", score).Error
}

type gormComments struct{ db *gorm.DB }

func (r *gormComments) ListByArticle(ctx context.Context, articleID string) ([]models.Comment, error) {
	var comments []models.Comment
	err := r.db.WithContext(ctx).Preload("Author").
		Where("article_id = ?", articleID).
		Order("created_at ASC").
		Find(&comments).Error
	return comments, err
}

func (r *gormComments) GetByID(ctx context.Context, id string) (*models.Comment, error) {
	var comment models.Comment
	if err := r.db.WithContext(ctx).Preload("Author").First(&comment, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &comment, nil
}

func (r *gormComments) Create(ctx context.Context, comment *models.Comment) error {
	return translate(r.db.WithContext(ctx).Omit(clause.Associations).Create(comment).Error)
}

func (r *gormComments) ToggleLike(ctx context.Context, commentID, userID string) (*models.Comment, bool, error) {
	var (
		comment models.Comment
		active  bool
	)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Select("id").First(&comment, "id = ?", commentID).Error; err != nil {
			return err
		}

		var err error
		if active, err = toggleRow(tx, models.ReactionCommentLike, commentID, userID); err != nil {
			return err
		}

		if err := tx.Model(&models.Comment{}).Where("id = ?", commentID).
			UpdateColumn("likes", counterExpr("likes", active)).Error; err != nil {
			return err
		}

		return tx.Preload("Author").First(&comment, "id = ?", commentID).Error
	})
	if err != nil {
		return nil, false, translate(err)
	}
	return &comment, active, nil
}

func (r *gormComments) CountByArticle(ctx context.Context, articleID string) (int, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Comment{}).Where("article_id = ?", articleID).Count(&count).Error
	return int(count), err
}

type gormReactions struct{ db *gorm.DB }

func (r *gormReactions) Active(ctx context.Context, userID string, kind models.ReactionKind, targetIDs []string) (map[string]bool, error) {
	active := make(map[string]bool)
	if userID == "" || len(targetIDs) == 0 {
		return active, nil
	}

	var ids []string
	err := r.db.WithContext(ctx).Model(&models.Reaction{}).
		Where("user_id = ? AND kind = ? AND target_id IN ?", userID, kind, targetIDs).
		Pluck("target_id", &ids).Error
	if err != nil {
		return nil, err
	}
	for _, id := range ids {
		active[id] = true
	}
	return active, nil
}

type gormUsers struct{ db *gorm.DB }

func (r *gormUsers) Create(ctx context.Context, user *models.User) error {
	return translate(r.db.WithContext(ctx).Create(user).Error)
}

func (r *gormUsers) GetByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (r *gormUsers) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("LOWER(email) = LOWER(?)", email).First(&user).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}
