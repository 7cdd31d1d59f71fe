package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/celerix-dev/ministranci-console/internal/archive"
	"github.com/celerix-dev/ministranci-console/internal/config"
	"github.com/celerix-dev/ministranci-console/internal/console"
	"github.com/celerix-dev/ministranci-console/internal/logging"
	"github.com/celerix-dev/ministranci-console/pkg/schema"
	"github.com/celerix-dev/ministranci-console/pkg/sdk"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		return
	}

	cfg, err := config.Load(".env")
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	logger, err := logging.NewLogger(cfg.LogLevel, "console", "ministranci-cli")
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	ctx := context.Background()
	client, err := sdk.Connect(ctx, cfg.API, logger.Named("sdk"))
	if err != nil {
		log.Fatalf("Failed to connect to %s: %v", cfg.API.BaseURL, err)
	}

	arch, err := archive.New(filepath.Join(cfg.DataDir, "archive"))
	if err != nil {
		log.Fatalf("Failed to open archive: %v", err)
	}
	term := newTerminal(os.Stdin, os.Stdout, arch)
	viewer := console.Viewer{Username: cfg.API.Username, Role: schema.RoleAdmin}
	cons := console.New(client, term, console.NewDashboard(viewer), console.NewSession("cli"),
		console.WithLogger(logger))

	command := strings.ToUpper(os.Args[1])
	args := os.Args[2:]

	switch command {
	case "PENALTIES":
		var list []schema.Penalty
		if len(args) > 0 {
			list, err = client.UserPenalties(ctx, args[0])
		} else {
			list, err = client.ListPenalties(ctx)
		}
		check(err)
		printJSON(list)

	case "ADD_PENALTY":
		if len(args) < 2 {
			log.Fatal("Usage: ministranci ADD_PENALTY <ministrant> <type> [description]")
		}
		draft := schema.PenaltyDraft{Ministrant: args[0], Type: args[1], Description: strings.Join(args[2:], " ")}
		run(cons.AddPenalty(ctx, draft))

	case "DEL_PENALTY":
		run(cons.DeletePenalty(ctx, argID(args, "DEL_PENALTY <id>")))

	case "BLOCKED":
		list, err := client.ListBlocked(ctx)
		check(err)
		printJSON(list)

	case "UNBLOCK":
		if len(args) < 1 {
			log.Fatal("Usage: ministranci UNBLOCK <username>")
		}
		run(cons.Unblock(ctx, args[0]))

	case "EMERGENCY":
		list, err := client.ListEmergencyContacts(ctx)
		check(err)
		printJSON(list)

	case "RESOLVE":
		run(cons.ResolveEmergency(ctx, argID(args, "RESOLVE <id>")))

	case "DEL_EMERGENCY":
		run(cons.DeleteEmergency(ctx, argID(args, "DEL_EMERGENCY <id>")))

	case "CONTACT":
		ec, err := cons.FindEmergencyContact(ctx, argID(args, "CONTACT <id>"))
		check(err)
		run(cons.ContactBack(ec))

	case "CONVERSATIONS":
		list, err := client.ListConversations(ctx)
		check(err)
		printJSON(list)

	case "THREAD":
		messages, err := client.ConversationThread(ctx, argID(args, "THREAD <id>"))
		check(err)
		printJSON(messages)

	case "DEVICES":
		list, err := client.ListDevices(ctx)
		check(err)
		printJSON(list)

	case "NOTIFY":
		if len(args) < 2 {
			log.Fatal("Usage: ministranci NOTIFY <title> <message>")
		}
		run(cons.SendNotification(ctx, args[0], strings.Join(args[1:], " ")))

	case "USER":
		if len(args) < 1 {
			log.Fatal("Usage: ministranci USER <username>")
		}
		info, err := client.UserInfo(ctx, args[0])
		check(err)
		printJSON(info)

	case "PASSWD":
		if len(args) < 3 {
			log.Fatal("Usage: ministranci PASSWD <username> <password> <confirmation>")
		}
		cons.OpenPasswordModal(args[0])
		cons.PasswordInput(args[1], args[2])
		run(cons.SubmitPassword(ctx))

	case "EXPORT_USERS":
		format := "csv"
		if len(args) > 0 {
			format = strings.ToLower(args[0])
		}
		check(cons.LoadUsers(ctx))
		if len(args) > 1 {
			cons.FilterByRole(args[1])
		}
		if format == "xlsx" {
			run(cons.ExportUsersXLSX())
		} else {
			run(cons.ExportUsersCSV())
		}

	case "BACKUP":
		run(cons.ExportAllData(ctx))

	case "IMPORT":
		if len(args) < 1 {
			log.Fatal("Usage: ministranci IMPORT <file.json>")
		}
		run(importFile(ctx, cons, args[0]))

	case "DELETE_SCHEDULES":
		run(cons.DeleteAllSchedules(ctx))

	case "MASS_TYPE":
		id := argID(args, "MASS_TYPE <id> [field=value ...]")
		values := url.Values{}
		for _, pair := range args[1:] {
			k, v, ok := strings.Cut(pair, "=")
			if !ok {
				log.Fatalf("Invalid field %q, expected field=value", pair)
			}
			values.Add(k, v)
		}
		run(cons.UpdateMassType(ctx, id, values))

	case "PING":
		_, err := client.ListDevices(ctx)
		check(err)
		fmt.Println("PONG")

	default:
		fmt.Printf("Unknown command: %s\n", command)
		printUsage()
	}
}

func printUsage() {
	fmt.Println("Ministranci CLI - admin console for the ministranci service")
	fmt.Println("\nUsage:")
	fmt.Println("  ministranci PENALTIES [username]")
	fmt.Println("  ministranci ADD_PENALTY <ministrant> <type> [description]")
	fmt.Println("  ministranci DEL_PENALTY <id>")
	fmt.Println("  ministranci BLOCKED")
	fmt.Println("  ministranci UNBLOCK <username>")
	fmt.Println("  ministranci EMERGENCY")
	fmt.Println("  ministranci RESOLVE <id>")
	fmt.Println("  ministranci DEL_EMERGENCY <id>")
	fmt.Println("  ministranci CONTACT <id>")
	fmt.Println("  ministranci CONVERSATIONS")
	fmt.Println("  ministranci THREAD <id>")
	fmt.Println("  ministranci DEVICES")
	fmt.Println("  ministranci NOTIFY <title> <message>")
	fmt.Println("  ministranci USER <username>")
	fmt.Println("  ministranci PASSWD <username> <password> <confirmation>")
	fmt.Println("  ministranci EXPORT_USERS [csv|xlsx] [role]")
	fmt.Println("  ministranci BACKUP")
	fmt.Println("  ministranci IMPORT <file.json>")
	fmt.Println("  ministranci DELETE_SCHEDULES")
	fmt.Println("  ministranci MASS_TYPE <id> [field=value ...]")
	fmt.Println("  ministranci PING")
	fmt.Println("\nEnvironment Variables:")
	fmt.Println("  MINISTRANCI_API_URL       Backend address (default: http://localhost:5000)")
	fmt.Println("  MINISTRANCI_API_USER      Admin login")
	fmt.Println("  MINISTRANCI_API_PASSWORD  Admin password")
	fmt.Println("  CONSOLE_DATA_DIR          Downloads go to <dir>/archive (default: ./data)")
	fmt.Println("  CONSOLE_LOG_LEVEL         debug, info, warn or error")
}

func argID(args []string, usage string) int64 {
	if len(args) < 1 {
		log.Fatal("Usage: ministranci " + usage)
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		log.Fatalf("Invalid id %q", args[0])
	}
	return id
}

// importFile closes the file before returning, since run may exit.
func importFile(ctx context.Context, cons *console.Console, path string) error {
	f, err := os.Open(path)
	if err != nil {
		log.Print(err)
		return err
	}
	defer f.Close()
	return cons.ImportAllData(ctx, f)
}

func check(err error) {
	if err != nil {
		log.Fatal(err)
	}
}

// run exits non-zero when an action failed. The console has already told
// the user why; a declined confirmation is not a failure.
func run(err error) {
	if err == nil || errors.Is(err, console.ErrCancelled) {
		return
	}
	os.Exit(1)
}

func printJSON(v any) {
	bytes, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Println(v)
		return
	}
	fmt.Println(string(bytes))
}
