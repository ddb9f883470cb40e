package mapper

import (
	"encoding/json"
	"time"

	"ai-reportgen-be/internal/entity"
	"ai-reportgen-be/internal/model"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type ConversationMapper struct{}

func NewConversationMapper() *ConversationMapper {
	return &ConversationMapper{}
}

func (m *ConversationMapper) ToEntity(c *model.Conversation) *entity.Conversation {
	if c == nil {
		return nil
	}

	var deletedAt *time.Time
	if c.DeletedAt.Valid {
		t := c.DeletedAt.Time
		deletedAt = &t
	}

	var updatedAt *time.Time
	if !c.UpdatedAt.IsZero() {
		t := c.UpdatedAt
		updatedAt = &t
	}

	var results []map[string]interface{}
	if len(c.SearchResults) > 0 {
		_ = json.Unmarshal(c.SearchResults, &results)
	}

	return &entity.Conversation{
		Id:            c.Id,
		Title:         c.Title,
		CurrentReport: c.CurrentReport,
		SearchResults: results,
		Metadata:      jsonToMap(c.Metadata),
		CreatedAt:     c.CreatedAt,
		UpdatedAt:     updatedAt,
		DeletedAt:     deletedAt,
		IsDeleted:     c.DeletedAt.Valid,
	}
}

func (m *ConversationMapper) ToModel(c *entity.Conversation) *model.Conversation {
	if c == nil {
		return nil
	}

	var deletedAt gorm.DeletedAt
	if c.DeletedAt != nil {
		deletedAt = gorm.DeletedAt{Time: *c.DeletedAt, Valid: true}
	}

	var updatedAt time.Time
	if c.UpdatedAt != nil {
		updatedAt = *c.UpdatedAt
	}

	var results datatypes.JSON
	if c.SearchResults != nil {
		if raw, err := json.Marshal(c.SearchResults); err == nil {
			results = datatypes.JSON(raw)
		}
	}

	return &model.Conversation{
		Id:            c.Id,
		Title:         c.Title,
		CurrentReport: c.CurrentReport,
		SearchResults: results,
		Metadata:      mapToJSON(c.Metadata),
		CreatedAt:     c.CreatedAt,
		UpdatedAt:     updatedAt,
		DeletedAt:     deletedAt,
	}
}

func (m *ConversationMapper) MessageToEntity(msg *model.ConversationMessage) *entity.ConversationMessage {
	if msg == nil {
		return nil
	}
	return &entity.ConversationMessage{
		Id:             msg.Id,
		ConversationId: msg.ConversationId,
		Role:           msg.Role,
		Content:        msg.Content,
		Type:           msg.Type,
		CreatedAt:      msg.CreatedAt,
	}
}

func (m *ConversationMapper) MessageToModel(msg *entity.ConversationMessage) *model.ConversationMessage {
	if msg == nil {
		return nil
	}
	return &model.ConversationMessage{
		Id:             msg.Id,
		ConversationId: msg.ConversationId,
		Role:           msg.Role,
		Content:        msg.Content,
		Type:           msg.Type,
		CreatedAt:      msg.CreatedAt,
	}
}

func (m *ConversationMapper) VersionToEntity(v *model.ReportVersion) *entity.ReportVersion {
	if v == nil {
		return nil
	}
	return &entity.ReportVersion{
		Id:             v.Id,
		ConversationId: v.ConversationId,
		Version:        v.Version,
		Content:        v.Content,
		Operation:      v.Operation,
		CreatedAt:      v.CreatedAt,
	}
}

func (m *ConversationMapper) VersionToModel(v *entity.ReportVersion) *model.ReportVersion {
	if v == nil {
		return nil
	}
	return &model.ReportVersion{
		Id:             v.Id,
		ConversationId: v.ConversationId,
		Version:        v.Version,
		Content:        v.Content,
		Operation:      v.Operation,
		CreatedAt:      v.CreatedAt,
	}
}
