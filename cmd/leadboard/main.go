package main

import (
	"context"
	"flag"
	"log"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"leadboard/internal/api"
	"leadboard/internal/board"
	"leadboard/internal/cache"
	"leadboard/internal/config"
	"leadboard/internal/engine"
	"leadboard/internal/notify"
	"leadboard/internal/pdf"
	"leadboard/internal/session"
	"leadboard/internal/tui"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "path to config file")
	email := flag.String("email", os.Getenv("LEADBOARD_EMAIL"), "staff email")
	password := flag.String("password", os.Getenv("LEADBOARD_PASSWORD"), "staff password")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal(err)
	}
	if *email == "" || *password == "" {
		log.Fatal("staff credentials required (-email/-password or LEADBOARD_EMAIL/LEADBOARD_PASSWORD)")
	}

	client := api.New(cfg.API.BaseURL, "")
	token, err := client.Login(context.Background(), *email, *password)
	if err != nil {
		log.Fatalf("login: %v", err)
	}
	client.SetToken(token)

	sess := session.FromToken(token)
	if !sess.Ready() {
		// empty permission set renders an empty board, which is valid, but
		// in an interactive session it is worth saying why
		log.Print("warning: no pipeline stages are visible for this role")
	}

	tableBuf := cache.NewTableBuffer(client, sess, cfg.API.PageSize)
	kanban := cache.NewBoard(client, sess, cfg.API.PageSize)
	eng := engine.New(client)
	adapter := board.NewAdapter(eng, kanban, tableBuf)

	eng.SetDocumentGenerator(pdf.NewDocumentGenerator(cfg.Files.RootDir, ""))

	var notifiers notify.Multi
	if cfg.Email.SMTPHost != "" && cfg.Email.SalesInbox != "" {
		notifiers = append(notifiers, notify.NewEmailNotifier(
			cfg.Email.SMTPHost, cfg.Email.SMTPPort, cfg.Email.SMTPUser,
			cfg.Email.SMTPPassword, cfg.Email.FromEmail, cfg.Email.SalesInbox))
	}
	if cfg.Telegram.BotToken != "" && cfg.Telegram.ChatID != 0 {
		tg, err := notify.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID)
		if err != nil {
			log.Printf("telegram disabled: %v", err)
		} else {
			notifiers = append(notifiers, tg)
		}
	}
	if len(notifiers) > 0 {
		eng.SetNotifier(notifiers)
	}

	m := tui.New(sess, eng, adapter, tableBuf, kanban)
	if _, err := tea.NewProgram(m, tea.WithAltScreen()).Run(); err != nil {
		log.Fatal(err)
	}
}
