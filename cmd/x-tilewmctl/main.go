// Command x-tilewmctl sends control commands to a running window manager
// session over its IPC socket.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/ItsNotGoodName/x-tilewm/internal/build"
	"github.com/ItsNotGoodName/x-tilewm/internal/config"
	"github.com/ItsNotGoodName/x-tilewm/internal/ipc"
	"github.com/spf13/cobra"
)

var socketPath string

func main() {
	root := &cobra.Command{
		Use:           "x-tilewmctl",
		Short:         "Control a running x-tilewm session",
		Version:       build.Current.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&socketPath, "socket", config.Default().SocketPath(), "IPC socket path")

	root.AddCommand(
		focusCmd(),
		workspaceCmd(),
		moveCmd(),
		layoutCmd(),
		simpleCmd("float", "Toggle floating on the focused client", ipc.ToggleFloat{}),
		simpleCmd("fullscreen", "Toggle fullscreen on the focused client", ipc.ToggleFullscreen{}),
		closeCmd(),
		simpleCmd("quit", "Shut down the window manager", ipc.Quit{}),
		statusCmd(),
		subscribeCmd(),
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "x-tilewmctl:", err)
		os.Exit(1)
	}
}

func send(cmd ipc.Command) (*ipc.StatusData, error) {
	client, err := ipc.Dial(socketPath)
	if err != nil {
		return nil, err
	}
	defer client.Close()
	return client.Do(cmd)
}

func simpleCmd(use, short string, cmd ipc.Command) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			_, err := send(cmd)
			return err
		},
	}
}

func focusCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "focus {next|prev}",
		Short:     "Cycle focus on the current workspace",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"next", "prev"},
		RunE: func(_ *cobra.Command, args []string) error {
			var cmd ipc.Command
			switch args[0] {
			case "next":
				cmd = ipc.FocusNext{}
			case "prev":
				cmd = ipc.FocusPrev{}
			default:
				return fmt.Errorf("focus direction must be next or prev, got %q", args[0])
			}
			_, err := send(cmd)
			return err
		},
	}
}

func workspaceCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "workspace N",
		Short: "Switch to workspace N",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			n, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("workspace index must be a number, got %q", args[0])
			}
			_, err = send(ipc.SwitchWorkspace{Index: n})
			return err
		},
	}
}

func moveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "move N",
		Short: "Move the focused client to workspace N",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			n, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("workspace index must be a number, got %q", args[0])
			}
			_, err = send(ipc.MoveToWorkspace{Index: n})
			return err
		},
	}
}

func layoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "layout NAME",
		Short:     "Set the current workspace layout",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{config.LayoutMasterStack, config.LayoutMonocle, config.LayoutGrid, config.LayoutFloating},
		RunE: func(_ *cobra.Command, args []string) error {
			_, err := send(ipc.SetLayout{Name: args[0]})
			return err
		},
	}
}

func closeCmd() *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "close",
		Short: "Close the focused client",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			var c ipc.Command = ipc.Close{}
			if force {
				c = ipc.ForceClose{}
			}
			_, err := send(c)
			return err
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "kill the client instead of asking it to close")
	return cmd
}

func statusCmd() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show session status",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			status, err := send(ipc.Status{})
			if err != nil {
				return err
			}

			if asJSON {
				return json.NewEncoder(os.Stdout).Encode(status)
			}

			fmt.Printf("version %s, up %ds, monitors %v\n", status.Version, status.UptimeSeconds, status.Monitors)
			printSnapshot(status.Snapshot)
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print machine-readable output")
	return cmd
}

func subscribeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "subscribe",
		Short: "Stream state snapshots, one JSON object per line",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			client, err := ipc.Dial(socketPath)
			if err != nil {
				return err
			}
			defer client.Close()

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			enc := json.NewEncoder(os.Stdout)
			err = client.Subscribe(ctx, func(snap ipc.Snapshot) error {
				return enc.Encode(snap)
			})
			if ctx.Err() != nil {
				return nil
			}
			return err
		},
	}
}

func printSnapshot(snap ipc.Snapshot) {
	for _, ws := range snap.Workspaces {
		marker := " "
		if ws.Index == snap.ActiveWorkspace {
			marker = "*"
		}
		fmt.Printf("%s workspace %d [%s] on %s (%d clients)\n",
			marker, ws.Index+1, ws.Layout, ws.Monitor, len(ws.Clients))
		for _, c := range ws.Clients {
			focus := " "
			if c.Window == snap.Focused && ws.Index == snap.ActiveWorkspace {
				focus = ">"
			}
			urgent := ""
			if c.Urgent {
				urgent = " urgent"
			}
			fmt.Printf("  %s %#x %s (%s%s)\n", focus, c.Window, c.Title, c.State, urgent)
		}
	}
}
