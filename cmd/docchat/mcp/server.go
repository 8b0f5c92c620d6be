package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/docpilot/docchat/internal/core/app"
	"github.com/docpilot/docchat/internal/core/chat"
	"github.com/docpilot/docchat/internal/core/config"
	"github.com/docpilot/docchat/internal/core/llm"
	"github.com/docpilot/docchat/internal/core/pdf"
	"github.com/docpilot/docchat/internal/core/session"
	"github.com/docpilot/docchat/internal/core/store"
)

// ListSessionsArgs defines arguments for the list_sessions tool
type ListSessionsArgs struct {
	Limit int `json:"limit,omitempty" jsonschema:"description=Max sessions to return (default: 20)"`
}

// GetSessionArgs defines arguments for the get_session tool
type GetSessionArgs struct {
	SessionID string `json:"session_id" jsonschema:"description=Session id to retrieve,required"`
}

// AskDocumentArgs defines arguments for the ask_document tool
type AskDocumentArgs struct {
	Question   string `json:"question" jsonschema:"description=Question to ask about the document,required"`
	PDFPath    string `json:"pdf_path,omitempty" jsonschema:"description=PDF file to attach; defaults to the active session's document"`
	Pages      string `json:"pages,omitempty" jsonschema:"description=Pages to send, e.g. 1-3,7; defaults to the session's selection"`
	NewSession bool   `json:"new_session,omitempty" jsonschema:"description=Start a fresh session for this question"`
}

// SessionSummary represents a session in the list view
type SessionSummary struct {
	SessionID string `json:"session_id"`
	Title     string `json:"title"`
	CreatedAt string `json:"created_at"`
	TurnCount int    `json:"turn_count"`
	PDF       string `json:"pdf,omitempty"`
	Pages     string `json:"pages,omitempty"`
}

// SessionDetail represents a session with its full conversation
type SessionDetail struct {
	SessionSummary
	History []TurnDetail `json:"history"`
}

// TurnDetail represents one question and answer pair
type TurnDetail struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// env holds the application wiring shared by the tool handlers.
type env struct {
	state *app.State
	ctrl  *session.Controller
	orch  *chat.Orchestrator
	blobs *store.BlobStore
}

// StartServer starts the MCP server over stdio.
func StartServer(ctx context.Context, dataDir string) error {
	cfg, err := config.Load(dataDir)
	if err != nil {
		log.Printf("config problem, using defaults: %v", err)
	}

	blobs, err := store.OpenBlobStore(config.BlobsPath(dataDir))
	if err != nil {
		return fmt.Errorf("failed to open blob store: %w", err)
	}
	defer func() {
		if closeErr := blobs.Close(); closeErr != nil {
			log.Printf("error closing blob store: %v", closeErr)
		}
	}()

	state := app.NewState()
	ctrl := session.NewController(state, store.NewSessionStore(config.SessionsPath(dataDir)), blobs)
	if _, err := ctrl.Init(); err != nil {
		return err
	}

	if key := cfg.ResolveAPIKey(); key != "" {
		provider, err := llm.NewGeminiProvider(ctx, key, cfg.Model)
		if err != nil {
			log.Printf("failed to initialize model client: %v", err)
		} else {
			defer provider.Close()
			state.Provider = provider
		}
	}

	orch := chat.NewOrchestrator(state, ctrl)
	orch.SystemTemplate = cfg.SystemPrompt
	e := &env{state: state, ctrl: ctrl, orch: orch, blobs: blobs}

	s := server.NewMCPServer(
		"docchat",
		"1.0.0",
	)

	listTool := mcp.NewTool("list_sessions",
		mcp.WithDescription("List saved document chat sessions, newest first"),
		mcp.WithNumber("limit",
			mcp.Description("Max sessions to return (default: 20)")),
	)
	s.AddTool(listTool, e.handleListSessions)

	getTool := mcp.NewTool("get_session",
		mcp.WithDescription("Retrieve one session with its full question and answer history"),
		mcp.WithString("session_id",
			mcp.Required(),
			mcp.Description("Session id to retrieve")),
	)
	s.AddTool(getTool, e.handleGetSession)

	askTool := mcp.NewTool("ask_document",
		mcp.WithDescription("Ask a question about selected pages of a PDF. Pages are rendered to images and sent with the question to a vision model."),
		mcp.WithString("question",
			mcp.Required(),
			mcp.Description("Question to ask about the document")),
		mcp.WithString("pdf_path",
			mcp.Description("PDF file to attach; defaults to the active session's document")),
		mcp.WithString("pages",
			mcp.Description("Pages to send, e.g. '1-3,7'; defaults to the session's current selection")),
		mcp.WithBoolean("new_session",
			mcp.Description("Start a fresh session for this question")),
	)
	s.AddTool(askTool, e.handleAskDocument)

	return server.ServeStdio(s)
}

func (e *env) handleListSessions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var args ListSessionsArgs
	if err := decodeArgs(request, &args); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid arguments: %v", err)), nil
	}

	limit := args.Limit
	if limit == 0 {
		limit = 20
	}

	var sessions []SessionSummary
	for _, sess := range e.state.Sessions {
		sessions = append(sessions, e.summarize(sess.ID))
		if len(sessions) >= limit {
			break
		}
	}

	resultJSON, err := json.Marshal(map[string]interface{}{
		"sessions": sessions,
	})
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal results: %v", err)), nil
	}
	return mcp.NewToolResultText(string(resultJSON)), nil
}

func (e *env) handleGetSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var args GetSessionArgs
	if err := decodeArgs(request, &args); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid arguments: %v", err)), nil
	}

	sess := e.state.FindSession(args.SessionID)
	if sess == nil {
		return mcp.NewToolResultError(fmt.Sprintf("no session with id %s", args.SessionID)), nil
	}

	detail := SessionDetail{SessionSummary: e.summarize(sess.ID), History: []TurnDetail{}}
	for _, turn := range sess.History {
		detail.History = append(detail.History, TurnDetail{
			Question: turn.UserPrompt,
			Answer:   turn.ModelResponse,
		})
	}

	resultJSON, err := json.Marshal(detail)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(resultJSON)), nil
}

func (e *env) handleAskDocument(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var args AskDocumentArgs
	if err := decodeArgs(request, &args); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid arguments: %v", err)), nil
	}

	if args.NewSession {
		if _, err := e.ctrl.Create(); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to create session: %v", err)), nil
		}
	}

	if args.PDFPath != "" {
		data, err := os.ReadFile(args.PDFPath)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to read %s: %v", args.PDFPath, err)), nil
		}
		if err := e.ctrl.AttachPDF(filepath.Base(args.PDFPath), data); err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
	}

	if args.Pages != "" {
		pages, err := pdf.ParseSelection(args.Pages)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		if err := e.ctrl.SetSelection(pages); err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
	}

	answer, err := e.orch.Ask(ctx, args.Question, chat.Callbacks{})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(answer), nil
}

func (e *env) summarize(id string) SessionSummary {
	sess := e.state.FindSession(id)
	summary := SessionSummary{
		SessionID: sess.ID,
		Title:     sess.Title,
		TurnCount: len(sess.History),
	}
	if ms, err := strconv.ParseInt(sess.ID, 10, 64); err == nil {
		summary.CreatedAt = time.UnixMilli(ms).Format("2006-01-02 15:04:05")
	}
	if sess.HasPDF() {
		summary.PDF = sess.PDFFileName
		summary.Pages = pdf.FormatSelection(sess.SelectedPages)
	}
	return summary
}

func decodeArgs(request mcp.CallToolRequest, out interface{}) error {
	argsBytes, _ := json.Marshal(request.Params.Arguments)
	return json.Unmarshal(argsBytes, out)
}
