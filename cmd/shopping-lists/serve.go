package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"shopping-lists/internal/server"
	"shopping-lists/internal/tui"
)

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP API, the text-generation endpoint and share pages",
		Args:  cobra.NoArgs,
		RunE: withEnv(func(cmd *cobra.Command, e *env, args []string) error {
			srv := server.New(e.app, e.newAssistant("web"), e.newEndpoint(), server.Options{
				ShareBaseURL: e.cfg.ShareBaseURL,
				Signer:       e.signer(),
				DataPath:     e.cfg.DataPath(),
			})

			httpSrv := &http.Server{
				Addr:    ":" + e.cfg.Port,
				Handler: srv.Handler(),
			}

			errCh := make(chan error, 1)
			go func() {
				log.Printf("Server listening on port %s", e.cfg.Port)
				if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- err
				}
			}()

			quit := make(chan os.Signal, 1)
			signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
			select {
			case <-quit:
			case err := <-errCh:
				return fmt.Errorf("server failed: %w", err)
			}
			log.Println("Shutting down server...")

			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := httpSrv.Shutdown(ctx); err != nil {
				return fmt.Errorf("server forced to shutdown: %w", err)
			}
			log.Println("Server exiting")
			return nil
		}),
	}
}

func chatCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "chat",
		Short: "Talk to the assistant in the terminal",
		Args:  cobra.NoArgs,
		RunE: withEnv(func(cmd *cobra.Command, e *env, args []string) error {
			chat := tui.NewChat(cmd.Context(), e.newAssistant("terminal"))
			if _, err := tea.NewProgram(chat).Run(); err != nil {
				return fmt.Errorf("chat failed: %w", err)
			}
			return nil
		}),
	}
}

func askCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ask <prompt>",
		Short: "Ask the stateless text-generation endpoint once",
		Args:  cobra.MinimumNArgs(1),
		RunE: withEnv(func(cmd *cobra.Command, e *env, args []string) error {
			resp, err := e.newEndpoint().Respond(cmd.Context(), strings.Join(args, " "))
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), resp)
			return nil
		}),
	}
}
