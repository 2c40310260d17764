package workshop

import (
	"time"

	"workshop-backend/internal/conversation"
	"workshop-backend/internal/document"
	"workshop-backend/internal/history"
)

type sectionResponse struct {
	Title           string `json:"title"`
	Content         string `json:"content"`
	Status          string `json:"status"`
	Generatable     bool   `json:"generatable"`
	GenerationState string `json:"generationState"`
}

type documentResponse struct {
	Brief    string            `json:"brief"`
	Sections []sectionResponse `json:"sections"`
}

type sessionResponse struct {
	SessionID string           `json:"sessionId"`
	CreatedAt time.Time        `json:"createdAt"`
	Document  documentResponse `json:"document"`
}

type messageResponse struct {
	MessageID string    `json:"messageId"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Streaming bool      `json:"streaming"`
	CreatedAt time.Time `json:"createdAt"`
}

type snapshotResponse struct {
	Seq     uint64    `json:"seq"`
	Cause   string    `json:"cause"`
	TakenAt time.Time `json:"takenAt"`
}

type taskResponse struct {
	TaskID  string `json:"taskId"`
	Section string `json:"section"`
	State   string `json:"state"`
}

type turnResponse struct {
	UserMessageID      string `json:"userMessageId"`
	AssistantMessageID string `json:"assistantMessageId"`
}

func toDocumentResponse(doc document.Document) documentResponse {
	out := documentResponse{Brief: doc.Brief, Sections: make([]sectionResponse, 0, len(doc.Sections))}
	for _, sec := range doc.Sections {
		out.Sections = append(out.Sections, sectionResponse{
			Title:           sec.Title,
			Content:         sec.Content,
			Status:          string(sec.Status),
			Generatable:     sec.Generatable,
			GenerationState: string(sec.GenState),
		})
	}
	return out
}

func toSessionResponse(s *Session) sessionResponse {
	return sessionResponse{
		SessionID: s.ID,
		CreatedAt: s.CreatedAt,
		Document:  toDocumentResponse(s.Document()),
	}
}

func toMessageResponses(messages []conversation.Message) []messageResponse {
	out := make([]messageResponse, 0, len(messages))
	for _, msg := range messages {
		out = append(out, messageResponse{
			MessageID: msg.ID,
			Role:      string(msg.Role),
			Content:   msg.Content,
			Streaming: msg.Streaming,
			CreatedAt: msg.CreatedAt,
		})
	}
	return out
}

func toSnapshotResponses(snaps []history.Snapshot) []snapshotResponse {
	out := make([]snapshotResponse, 0, len(snaps))
	for _, snap := range snaps {
		out = append(out, snapshotResponse{
			Seq:     snap.Seq,
			Cause:   string(snap.Cause),
			TakenAt: snap.TakenAt,
		})
	}
	return out
}
