package main

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/danielpatrickdp/narsvm/internal/logging"
	"github.com/danielpatrickdp/narsvm/internal/replay"
	"github.com/danielpatrickdp/narsvm/internal/snapshot"
)

// #region inspect

func (a *app) inspectCmd() *cobra.Command {
	var last int
	var id string
	var sessions, jsonOut bool
	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "List saved snapshots or recorded sessions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := snapshot.Open(a.cfg.Storage.Path)
			if err != nil {
				return fmt.Errorf("open db: %w", err)
			}
			defer store.Close()

			switch {
			case sessions:
				return a.listSessions(store)
			case id != "":
				return a.showSnapshot(store, id, jsonOut)
			}
			return a.listSnapshots(store, last, jsonOut)
		},
	}
	cmd.Flags().IntVar(&last, "last", 20, "show N most recent snapshots")
	cmd.Flags().StringVar(&id, "snapshot", "", "print one snapshot's payload (id, label or active)")
	cmd.Flags().BoolVar(&sessions, "sessions", false, "list recorded sessions instead")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "output as JSON instead of a table")
	return cmd
}

type snapshotRow struct {
	ID        string `json:"id"`
	ParentID  string `json:"parent_id,omitempty"`
	Label     string `json:"label,omitempty"`
	Target    string `json:"target"`
	Clock     int64  `json:"clock"`
	Bytes     int    `json:"bytes"`
	CreatedAt string `json:"created_at"`
}

func (a *app) listSnapshots(store *snapshot.Store, last int, jsonOut bool) error {
	recs, err := store.List(last)
	if err != nil {
		return err
	}
	rows := make([]snapshotRow, len(recs))
	for i, r := range recs {
		rows[i] = snapshotRow{
			ID: r.ID, ParentID: r.ParentID, Label: r.Label, Target: r.Target,
			Clock: r.Clock, Bytes: len(r.Payload), CreatedAt: r.CreatedAt.Format(time.RFC3339),
		}
	}
	if jsonOut {
		enc := json.NewEncoder(a.out)
		enc.SetIndent("", "  ")
		return enc.Encode(rows)
	}
	if len(rows) == 0 {
		fmt.Fprintln(a.out, "no snapshots found")
		return nil
	}
	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tLABEL\tTARGET\tCLOCK\tBYTES\tCREATED")
	for _, r := range rows {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%d\t%s\n", r.ID, r.Label, r.Target, r.Clock, r.Bytes, r.CreatedAt)
	}
	return tw.Flush()
}

func (a *app) showSnapshot(store *snapshot.Store, ref string, jsonOut bool) error {
	rec, err := store.Find(ref)
	if err != nil {
		return err
	}
	if !jsonOut {
		fmt.Fprintf(a.out, "id: %s\nparent: %s\nlabel: %s\ntarget: %s\nclock: %d\n",
			rec.ID, rec.ParentID, rec.Label, rec.Target, rec.Clock)
	}
	_, err = fmt.Fprintln(a.out, string(rec.Payload))
	return err
}

func (a *app) listSessions(store *snapshot.Store) error {
	ids, err := logging.Sessions(store.DB())
	if err != nil {
		return err
	}
	for _, id := range ids {
		outs, err := logging.ReadOutputs(store.DB(), id)
		if err != nil {
			return err
		}
		fmt.Fprintf(a.out, "%s\t%d outputs\n", id, len(outs))
	}
	return nil
}

// #endregion inspect

// #region export

func (a *app) exportCmd() *cobra.Command {
	var session, outPath, description string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Turn a recorded session into a replay fixture",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := snapshot.Open(a.cfg.Storage.Path)
			if err != nil {
				return fmt.Errorf("open db: %w", err)
			}
			defer store.Close()

			if session == "" {
				ids, err := logging.Sessions(store.DB())
				if err != nil {
					return err
				}
				if len(ids) == 0 {
					return fmt.Errorf("no recorded sessions in %s", a.cfg.Storage.Path)
				}
				session = ids[len(ids)-1]
			}
			entries, err := logging.ReadOutputs(store.DB(), session)
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				return fmt.Errorf("session %s has no recorded outputs", session)
			}
			if description == "" {
				description = "exported session " + session
			}
			f := replay.FromOutputLog(description, entries)
			f.Engine = a.cfg.Engine
			if f.Parameters, err = json.Marshal(a.cfg.Reasoner); err != nil {
				return fmt.Errorf("marshal parameters: %w", err)
			}
			if v := a.cfg.Runtime.Volume; v != 0 {
				// The session applied the volume before recording started.
				f.Lines = append([]string{fmt.Sprintf("VOL %d", v)}, f.Lines...)
				for i := range f.Expected {
					f.Expected[i].Line++
				}
			}

			data, err := json.MarshalIndent(f, "", "  ")
			if err != nil {
				return fmt.Errorf("marshal fixture: %w", err)
			}
			if outPath == "" {
				_, err = fmt.Fprintln(a.out, string(data))
				return err
			}
			if err := os.WriteFile(outPath, append(data, '\n'), 0o644); err != nil {
				return fmt.Errorf("write fixture: %w", err)
			}
			fmt.Fprintf(a.out, "wrote %d lines, %d expectations to %s\n", len(f.Lines), len(f.Expected), outPath)
			return nil
		},
	}
	cmd.Flags().StringVar(&session, "session", "", "session id (default: the most recent)")
	cmd.Flags().StringVar(&outPath, "out", "", "fixture path (default: stdout)")
	cmd.Flags().StringVar(&description, "description", "", "fixture description")
	return cmd
}

// #endregion export
