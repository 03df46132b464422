package surface

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"

	"github.com/modhost-project/modhost-go/pkg/host"
	"github.com/modhost-project/modhost-go/pkg/log"
	"github.com/modhost-project/modhost-go/pkg/model"
	"github.com/modhost-project/modhost-go/pkg/transport"
	"github.com/modhost-project/modhost-go/pkg/wire"
)

// ServerConfig configures a control surface server.
type ServerConfig struct {
	// Host is the host to expose. Required.
	Host *host.Host

	// Address to listen on (default: all interfaces, transport.DefaultPort).
	Address string

	// WriteToken gates Write operations. An empty token grants write
	// privilege to every connection.
	WriteToken string

	// Logger for human-readable debug output (optional).
	Logger *slog.Logger

	// EventLogger for structured event capture (optional).
	EventLogger log.Logger
}

// Server exposes a host over the control plane.
type Server struct {
	config ServerConfig
	logger *slog.Logger
	server *transport.Server
}

// NewServer creates a control surface server.
func NewServer(config ServerConfig) (*Server, error) {
	if config.Host == nil {
		return nil, fmt.Errorf("host is required")
	}

	logger := config.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	s := &Server{
		config: config,
		logger: logger,
	}
	s.server = transport.NewServer(transport.ServerConfig{
		Address: config.Address,
		Logger:  config.EventLogger,
		OnMessage: func(conn *transport.ServerConn, msg []byte) {
			s.handleMessage(conn, msg)
		},
		OnError: func(conn *transport.ServerConn, err error) {
			logger.Warn("transport error", "error", err)
		},
	})
	return s, nil
}

// Start begins accepting management connections.
func (s *Server) Start(ctx context.Context) error {
	return s.server.Start(ctx)
}

// Stop closes the listener and all connections.
func (s *Server) Stop() error {
	return s.server.Stop()
}

// Addr returns the bound listen address.
func (s *Server) Addr() net.Addr {
	return s.server.Addr()
}

// handleMessage dispatches one decoded request. Undecodable frames are
// dropped; there is no message ID to answer with.
func (s *Server) handleMessage(conn *transport.ServerConn, msg []byte) {
	req, err := wire.DecodeRequest(msg)
	if err != nil {
		s.logger.Warn("dropping undecodable request",
			"conn", conn.ConnID(), "error", err)
		return
	}

	resp := s.dispatch(req)

	data, err := wire.EncodeResponse(resp)
	if err != nil {
		s.logger.Error("failed to encode response",
			"conn", conn.ConnID(), "error", err)
		return
	}
	if err := conn.Send(data); err != nil {
		s.logger.Warn("failed to send response",
			"conn", conn.ConnID(), "error", err)
	}
}

func (s *Server) dispatch(req *wire.Request) *wire.Response {
	if err := req.Validate(); err != nil {
		return &wire.Response{
			MessageID: req.MessageID,
			Status:    wire.StatusUnsupported,
		}
	}

	switch req.Operation {
	case wire.OpList:
		return s.handleList(req)
	case wire.OpInfo:
		return s.handleInfo(req)
	case wire.OpRead:
		return s.handleRead(req)
	case wire.OpWrite:
		return s.handleWrite(req)
	default:
		return &wire.Response{
			MessageID: req.MessageID,
			Status:    wire.StatusUnsupported,
		}
	}
}

func (s *Server) handleList(req *wire.Request) *wire.Response {
	statuses := s.config.Host.List()

	payload := wire.ListResponsePayload{
		Units: make([]wire.UnitSummary, 0, len(statuses)),
	}
	for _, st := range statuses {
		desc, err := s.config.Host.Describe(st.Name)
		description := ""
		if err == nil {
			description = desc.Info.Description
		}
		payload.Units = append(payload.Units, wire.UnitSummary{
			Name:        st.Name,
			Description: description,
			State:       st.State.String(),
			ParamCount:  st.ParamCount,
			InstanceID:  st.InstanceID,
		})
	}

	return &wire.Response{
		MessageID: req.MessageID,
		Status:    wire.StatusSuccess,
		Payload:   payload,
	}
}

func (s *Server) handleInfo(req *wire.Request) *wire.Response {
	desc, err := s.config.Host.Describe(req.Unit)
	if err != nil {
		return s.errorResponse(req, err)
	}

	payload := wire.InfoResponsePayload{
		Name:        desc.Info.Name,
		Author:      desc.Info.Author,
		Description: desc.Info.Description,
		License:     desc.Info.License,
		Version:     desc.Info.Version,
		State:       desc.State.String(),
		Params:      make([]wire.ParamDescriptor, 0, len(desc.Params)),
	}
	for _, p := range desc.Params {
		payload.Params = append(payload.Params, wire.ParamDescriptor{
			Name:        p.Name,
			Access:      p.Access.String(),
			Value:       p.Value,
			Default:     p.Default,
			Description: p.Description,
			Unit:        p.Unit,
		})
	}

	return &wire.Response{
		MessageID: req.MessageID,
		Status:    wire.StatusSuccess,
		Payload:   payload,
	}
}

func (s *Server) handleRead(req *wire.Request) *wire.Response {
	value, err := s.config.Host.ReadParam(req.Unit, req.Param)
	if err != nil {
		return s.errorResponse(req, err)
	}

	return &wire.Response{
		MessageID: req.MessageID,
		Status:    wire.StatusSuccess,
		Payload:   wire.ReadResponsePayload{Value: value},
	}
}

func (s *Server) handleWrite(req *wire.Request) *wire.Response {
	value, ok := wire.ExtractWriteValue(req.Payload)
	if !ok {
		return &wire.Response{
			MessageID: req.MessageID,
			Status:    wire.StatusInvalidValue,
		}
	}

	privileged := s.config.WriteToken == "" || req.Token == s.config.WriteToken

	result, err := s.config.Host.WriteParam(req.Unit, req.Param, value, privileged)
	if err != nil {
		return s.errorResponse(req, err)
	}

	return &wire.Response{
		MessageID: req.MessageID,
		Status:    wire.StatusSuccess,
		Payload: wire.WriteResponsePayload{
			OldValue: result.OldValue,
			NewValue: result.NewValue,
		},
	}
}

func (s *Server) errorResponse(req *wire.Request, err error) *wire.Response {
	return &wire.Response{
		MessageID: req.MessageID,
		Status:    statusFromError(err),
	}
}

// statusFromError maps host and model errors to wire statuses.
func statusFromError(err error) wire.Status {
	switch {
	case errors.Is(err, host.ErrUnitNotLoaded):
		return wire.StatusInvalidUnit
	case errors.Is(err, model.ErrParamNotFound):
		return wire.StatusInvalidParam
	case errors.Is(err, model.ErrParamNotWritable):
		return wire.StatusNotWritable
	case errors.Is(err, host.ErrPermissionDenied):
		return wire.StatusPermissionDenied
	case errors.Is(err, model.ErrParamOutOfRange):
		return wire.StatusInvalidValue
	default:
		return wire.StatusInternal
	}
}
