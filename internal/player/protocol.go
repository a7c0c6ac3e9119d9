package player

import (
	"context"
	"encoding/json"

	"github.com/mgpai22/subplay/internal/failure"
	"github.com/mgpai22/subplay/internal/logging"
	"github.com/mgpai22/subplay/internal/settings"
	"github.com/mgpai22/subplay/internal/subtitle"
)

const (
	ActionLoadSubtitle      = "loadSubtitle"
	ActionClearSubtitle     = "clearSubtitle"
	ActionUpdateSettings    = "updateSettings"
	ActionGetSubtitleStatus = "getSubtitleStatus"
)

// Request is one protocol message. Fields beyond Action depend on it.
type Request struct {
	Action   string          `json:"action"`
	Content  string          `json:"content,omitempty"`
	FileName string          `json:"fileName,omitempty"`
	Type     string          `json:"type,omitempty"`
	Settings json.RawMessage `json:"settings,omitempty"`
}

type Response struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`

	*SubtitleStatus
}

// status fields, only present in getSubtitleStatus responses
type SubtitleStatus struct {
	// nil when nothing is loaded
	Type        *string `json:"type"`
	HasSubtitle bool    `json:"hasSubtitle"`
	FileName    string  `json:"fileName,omitempty"`
	Ready       bool    `json:"ready"`
}

// Handler answers protocol requests against a session.
type Handler struct {
	session *Session
	logger  *logging.Logger
}

func NewHandler(session *Session, logger *logging.Logger) *Handler {
	return &Handler{
		session: session,
		logger:  logging.OrNop(logger).Named("protocol"),
	}
}

func (h *Handler) Handle(ctx context.Context, req Request) Response {
	switch req.Action {
	case ActionLoadSubtitle:
		return h.load(ctx, req)
	case ActionClearSubtitle:
		h.session.Clear()
		return Response{Success: true}
	case ActionUpdateSettings:
		return h.updateSettings(ctx, req)
	case ActionGetSubtitleStatus:
		return h.status()
	default:
		h.logger.Debugw("unknown action", "action", req.Action)
		return Response{Error: "Unknown action"}
	}
}

func (h *Handler) load(ctx context.Context, req Request) Response {
	var (
		format subtitle.Format
		err    error
	)
	if req.Type != "" {
		format, err = subtitle.ParseFormat(req.Type)
	} else {
		format, err = subtitle.FormatFromFileName(req.FileName)
	}
	if err != nil {
		return h.failed(req, err)
	}

	if err := h.session.Load(ctx, req.Content, req.FileName, format); err != nil {
		return h.failed(req, err)
	}
	return Response{Success: true}
}

func (h *Handler) failed(req Request, err error) Response {
	h.logger.Warnw("request failed",
		"action", req.Action,
		"file", req.FileName,
		"error", err,
	)
	return Response{Error: failure.Message(err)}
}

func (h *Handler) updateSettings(ctx context.Context, req Request) Response {
	if len(req.Settings) == 0 {
		return Response{Success: true}
	}
	patch, err := settings.ParsePatch(req.Settings)
	if err != nil {
		return h.failed(req, failure.Wrap(failure.ErrFormat, err, "invalid settings object"))
	}
	if err := h.session.UpdateSettings(ctx, patch); err != nil {
		return h.failed(req, err)
	}
	return Response{Success: true}
}

func (h *Handler) status() Response {
	st := h.session.Status()
	status := &SubtitleStatus{
		HasSubtitle: st.HasSubtitle(),
		FileName:    st.FileName,
		Ready:       st.Ready,
	}
	if st.HasSubtitle() {
		t := st.State.String()
		status.Type = &t
	}
	return Response{Success: true, SubtitleStatus: status}
}
