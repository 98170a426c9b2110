// Copyright (c) 2025 BVK Chaitanya

// Package httputil implements a http server with support for adding and
// removing handlers dynamically at runtime.
package httputil

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"sync"
	"sync/atomic"

	"github.com/bvk/broker/ctxutil"
	"github.com/google/uuid"
)

type Server struct {
	cg ctxutil.CloseGroup

	opts Options

	mutex sync.Mutex

	server *http.Server

	handlerMap map[string]http.Handler

	mux atomic.Pointer[http.ServeMux]
}

// New creates a http server that allows handlers to be added and removed
// dynamically. Listening endpoints are added separately with the Start
// method.
func New(opts *Options) (_ *Server, status error) {
	if opts == nil {
		opts = new(Options)
	}
	opts.setDefaults()
	if err := opts.Check(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	s := &Server{
		opts:       *opts,
		handlerMap: make(map[string]http.Handler),
	}
	s.mux.Store(http.NewServeMux())
	return s, nil
}

// Close shuts down the listening endpoint and stops the http server.
func (s *Server) Close() error {
	s.mutex.Lock()
	server := s.server
	s.server = nil
	s.mutex.Unlock()

	if server != nil {
		_ = server.Shutdown(context.Background())
	}
	s.cg.Close()
	return nil
}

// Start creates a listening endpoint for the http server on the given TCP
// address. Server readiness is verified with a probe request before this
// function returns.
func (s *Server) Start(ctx context.Context, addr *net.TCPAddr) (status error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if s.server != nil {
		return fmt.Errorf("server has already started: %w", os.ErrExist)
	}

	listener, err := net.ListenTCP("tcp", addr)
	if err != nil {
		return fmt.Errorf("could not listen on %v: %w", addr, err)
	}
	defer func() {
		if status != nil {
			_ = listener.Close()
		}
	}()

	server := &http.Server{
		Handler: s,
		BaseContext: func(net.Listener) context.Context {
			return s.cg.Context()
		},
	}

	s.cg.Go(func(ctx context.Context) {
		if err := server.Serve(listener); err != nil {
			if !errors.Is(err, http.ErrServerClosed) {
				slog.ErrorContext(ctx, "http server has failed", "error", err)
			}
		}
	})

	// Install a probe handler at a random path and wait till it becomes
	// reachable.
	checkPath := "/" + uuid.New().String()
	s.handlerMap[checkPath] = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})
	s.updateHandlerMux()
	defer func() {
		delete(s.handlerMap, checkPath)
		s.updateHandlerMux()
	}()

	checkURL := fmt.Sprintf("http://%s%s", listener.Addr().String(), checkPath)
	client := &http.Client{Timeout: s.opts.ServerCheckTimeout}
	for {
		resp, err := client.Get(checkURL)
		if err == nil {
			_ = resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				break
			}
		}
		ctxutil.Sleep(ctx, s.opts.ServerCheckRetryInterval)
		if ctx.Err() != nil {
			_ = server.Shutdown(context.Background())
			return fmt.Errorf("server is not ready: %w", context.Cause(ctx))
		}
	}

	s.server = server
	return nil
}

// AddHandler adds a handler at the given pattern. Returns false if a handler
// already exists at the pattern.
func (s *Server) AddHandler(pattern string, handler http.Handler) bool {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if _, ok := s.handlerMap[pattern]; ok {
		return false
	}
	s.handlerMap[pattern] = handler
	s.updateHandlerMux()
	return true
}

// RemoveHandler removes the handler at the given pattern. Returns false if no
// handler exists at the pattern.
func (s *Server) RemoveHandler(pattern string) bool {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if _, ok := s.handlerMap[pattern]; !ok {
		return false
	}
	delete(s.handlerMap, pattern)
	s.updateHandlerMux()
	return true
}

func (s *Server) updateHandlerMux() {
	mux := http.NewServeMux()
	for pattern, handler := range s.handlerMap {
		mux.Handle(pattern, handler)
	}
	s.mux.Store(mux)
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	mux := s.mux.Load()
	mux.ServeHTTP(w, r)
}
