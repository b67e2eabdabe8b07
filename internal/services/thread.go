package services

import "inkwell/internal/models"

// BuildThread groups an article's comments into a two-level tree. Top-level
// comments keep their input order, each carrying its direct replies in input
// order. Comments of other articles and replies whose parent is not a
// top-level comment of this article are dropped.
func BuildThread(comments []models.Comment, articleID string) []models.Comment {
	var top []models.Comment
	index := make(map[string]int)
	for _, c := range comments {
		if c.ArticleID != articleID || !c.IsTopLevel() {
			continue
		}
		c.ParentID = nil
		c.Replies = []models.Comment{}
		index[c.ID] = len(top)
		top = append(top, c)
	}

	for _, c := range comments {
		if c.ArticleID != articleID || c.IsTopLevel() {
			continue
		}
		i, ok := index[*c.ParentID]
		if !ok {
			continue // 孤儿回复
		}
		c.Replies = nil
		top[i].Replies = append(top[i].Replies, c)
	}

	if top == nil {
		return []models.Comment{}
	}
	return top
}
