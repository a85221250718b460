package notion

import (
	"encoding/json"

	"github.com/opsbrain/ceo-operator/internal/models"
	"go.uber.org/zap"
)

// Property extraction is deliberately forgiving: a missing or malformed
// property yields an empty string, never an error. Users rearrange Notion
// databases; one odd page must not break a fetch.

// taskFromPage maps a Notion page onto a task snapshot
func (c *Client) taskFromPage(p page) models.Task {
	task := models.Task{
		ID:             p.ID,
		Title:          extractTitle(p.Properties["Task"]),
		Status:         extractSelect(p.Properties["Status"]),
		Priority:       extractSelect(p.Properties["Priority"]),
		Project:        extractRichText(p.Properties["Project"]),
		Notes:          extractRichText(p.Properties["Notes"]),
		DueDate:        extractDate(p.Properties["Due Date"]),
		CreatedTime:    p.CreatedTime,
		LastEditedTime: p.LastEditedTime,
		URL:            p.URL,
	}
	if task.Title == "" {
		c.logger.Warn("task_title_missing", zap.String("page_id", p.ID))
	}
	return task
}

type textFragment struct {
	Text struct {
		Content string `json:"content"`
	} `json:"text"`
}

func extractTitle(raw json.RawMessage) string {
	if raw == nil {
		return ""
	}
	var prop struct {
		Title []textFragment `json:"title"`
	}
	if err := json.Unmarshal(raw, &prop); err != nil || len(prop.Title) == 0 {
		return ""
	}
	return prop.Title[0].Text.Content
}

func extractSelect(raw json.RawMessage) string {
	if raw == nil {
		return ""
	}
	var prop struct {
		Select *struct {
			Name string `json:"name"`
		} `json:"select"`
	}
	if err := json.Unmarshal(raw, &prop); err != nil || prop.Select == nil {
		return ""
	}
	return prop.Select.Name
}

func extractRichText(raw json.RawMessage) string {
	if raw == nil {
		return ""
	}
	var prop struct {
		RichText []textFragment `json:"rich_text"`
	}
	if err := json.Unmarshal(raw, &prop); err != nil || len(prop.RichText) == 0 {
		return ""
	}
	return prop.RichText[0].Text.Content
}

func extractDate(raw json.RawMessage) string {
	if raw == nil {
		return ""
	}
	var prop struct {
		Date *struct {
			Start string `json:"start"`
		} `json:"date"`
	}
	if err := json.Unmarshal(raw, &prop); err != nil || prop.Date == nil {
		return ""
	}
	return prop.Date.Start
}
