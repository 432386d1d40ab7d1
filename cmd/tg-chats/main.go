package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"

	"github.com/celestix/gotgproto"
	"github.com/celestix/gotgproto/sessionMaker"
	"github.com/gotd/td/tg"
)

func main() {
	output := flag.String("o", "", "also write chats to this file (id TAB title per line)")
	flag.Parse()

	ctx := context.Background()

	// read credentials from env
	apiIDStr := os.Getenv("TG_API_ID")
	apiHash := os.Getenv("TG_API_HASH")
	sessionString := os.Getenv("TG_SESSION_STRING")

	if apiIDStr == "" || apiHash == "" || sessionString == "" {
		fmt.Println("error: missing required environment variables")
		fmt.Println("please set: TG_API_ID, TG_API_HASH, TG_SESSION_STRING")
		os.Exit(1)
	}

	apiID, err := strconv.Atoi(apiIDStr)
	if err != nil {
		fmt.Printf("error: invalid TG_API_ID: %v\n", err)
		os.Exit(1)
	}

	// create telegram client with string session
	client, err := gotgproto.NewClient(
		apiID,
		apiHash,
		gotgproto.ClientTypePhone(""),
		&gotgproto.ClientOpts{
			Session:          sessionMaker.StringSession(sessionString),
			DisableCopyright: true,
			InMemory:         true, // don't write to disk
		},
	)
	if err != nil {
		fmt.Printf("error creating client: %v\n", err)
		os.Exit(1)
	}
	defer client.Stop()

	fmt.Println("fetching chat list...")

	result, err := client.API().MessagesGetDialogs(ctx, &tg.MessagesGetDialogsRequest{
		OffsetPeer: &tg.InputPeerEmpty{},
		Limit:      100,
	})
	if err != nil {
		fmt.Printf("error fetching dialogs: %v\n", err)
		os.Exit(1)
	}

	var chats []tg.ChatClass
	var users []tg.UserClass
	switch d := result.(type) {
	case *tg.MessagesDialogs:
		chats, users = d.Chats, d.Users
	case *tg.MessagesDialogsSlice:
		chats, users = d.Chats, d.Users
	default:
		fmt.Println("unexpected dialogs response")
		os.Exit(1)
	}

	type row struct {
		id    int64
		title string
		kind  string
	}
	var rows []row

	for _, ch := range chats {
		switch chat := ch.(type) {
		case *tg.Channel:
			rows = append(rows, row{chat.ID, chat.Title, "channel"})
		case *tg.Chat:
			rows = append(rows, row{chat.ID, chat.Title, "chat"})
		}
	}
	for _, u := range users {
		user, ok := u.(*tg.User)
		if !ok {
			continue
		}
		title := user.FirstName
		if user.LastName != "" {
			title += " " + user.LastName
		}
		if title == "" {
			title = user.Username
		}
		rows = append(rows, row{user.ID, title, "user"})
	}

	fmt.Printf("total chats: %d\n\n", len(rows))
	fmt.Printf("%-16s | %-40s | %-8s\n", "id", "title", "kind")
	for _, r := range rows {
		title := r.title
		if len(title) > 40 {
			title = title[:37] + "..."
		}
		fmt.Printf("%-16d | %-40s | %-8s\n", r.id, title, r.kind)
	}

	if *output != "" {
		f, err := os.Create(*output)
		if err != nil {
			fmt.Printf("error creating %s: %v\n", *output, err)
			os.Exit(1)
		}
		defer f.Close()
		for _, r := range rows {
			fmt.Fprintf(f, "%d\t%s\n", r.id, r.title)
		}
		fmt.Printf("\nchats saved to %s\n", *output)
	}
}
