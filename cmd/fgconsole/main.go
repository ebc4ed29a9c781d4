package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fieldgrid/fieldgrid-console/internal/api"
	"github.com/fieldgrid/fieldgrid-console/internal/app"
	"github.com/fieldgrid/fieldgrid-console/internal/approval"
	"github.com/fieldgrid/fieldgrid-console/internal/catalog"
	"github.com/fieldgrid/fieldgrid-console/internal/export"
	"github.com/fieldgrid/fieldgrid-console/internal/report"
	"github.com/fieldgrid/fieldgrid-console/internal/session"
	"github.com/fieldgrid/fieldgrid-console/internal/tui"
	"github.com/fieldgrid/fieldgrid-console/internal/upload"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}
	logger := app.NewLogger(cfg)

	sess, err := session.Load(cfg.SessionFile)
	if err != nil {
		if errors.Is(err, session.ErrNoSession) || errors.Is(err, session.ErrExpired) {
			fmt.Fprintln(os.Stderr, "fgconsole: sign in first, then place the session file at", cfg.SessionFile)
		} else {
			logger.Error("load session", slog.Any("error", err))
		}
		os.Exit(1)
	}
	ctx = session.NewContext(ctx, sess)

	client := api.NewClient(cfg.APIBaseURL,
		api.WithTimeout(cfg.APITimeout),
		api.WithToken(func() string { return sess.Token }),
		api.WithLogger(logger),
	)

	args := os.Args[1:]
	if len(args) == 0 {
		if err := tui.NewApp(cfg, sess, client, logger).Run(); err != nil {
			logger.Error("console exited", slog.Any("error", err))
			os.Exit(1)
		}
		return
	}

	var runErr error
	switch args[0] {
	case "export":
		runErr = runExport(ctx, cfg, client, args[1:])
	case "upload":
		runErr = runUpload(ctx, cfg, client, args[1:])
	case "template":
		runErr = runTemplate(args[1:])
	case "quote-pdf":
		runErr = runQuotePDF(ctx, cfg, client, args[1:])
	case "lines":
		runErr = runLines(ctx, client, args[1:])
	case "approve":
		runErr = runDecision(ctx, client, "approve", args[1:])
	case "reject":
		runErr = runDecision(ctx, client, "reject", args[1:])
	case "revisions":
		runErr = runRevisions(ctx, client, args[1:])
	default:
		runErr = fmt.Errorf("unknown command %q (expected export, upload, template, quote-pdf, lines, approve, reject or revisions)", args[0])
	}
	if runErr != nil {
		fmt.Fprintln(os.Stderr, "fgconsole:", runErr)
		os.Exit(1)
	}
}

func lookupEntity(name string) (catalog.Entity, error) {
	entity, ok := catalog.Lookup(name)
	if !ok {
		return catalog.Entity{}, fmt.Errorf("unknown entity %q (one of: %v)", name, catalog.Names())
	}
	return entity, nil
}

func runExport(ctx context.Context, cfg *app.Config, client *api.Client, args []string) error {
	if len(args) < 1 {
		return errors.New("usage: fgconsole export <entity>")
	}
	entity, err := lookupEntity(args[0])
	if err != nil {
		return err
	}
	if !entity.Export {
		return fmt.Errorf("%s has no export endpoint", entity.Name)
	}
	blob, err := client.Collection(entity.Path).Export(ctx, nil)
	if err != nil {
		return err
	}
	path, err := export.Save(cfg.ExportDir, entity.ExportPrefix, blob, time.Now())
	if err != nil {
		return err
	}
	fmt.Println("saved", path)
	return nil
}

func runUpload(ctx context.Context, cfg *app.Config, client *api.Client, args []string) error {
	if len(args) < 2 {
		return errors.New("usage: fgconsole upload <entity> <file>")
	}
	if sess := session.FromContext(ctx); sess == nil || !sess.CanBulkUpload() {
		return errors.New("your role cannot bulk upload")
	}
	entity, err := lookupEntity(args[0])
	if err != nil {
		return err
	}
	if !entity.BulkUpload {
		return fmt.Errorf("%s has no bulk-upload endpoint", entity.Name)
	}

	report, err := upload.Run(ctx, client, entity, args[1], cfg.UploadMaxBytes, func(sent, total int64) {
		fmt.Printf("\ruploading… %d%%", sent*100/total)
	})
	fmt.Println()
	if err != nil {
		return err
	}

	fmt.Printf("processed %d of %d rows (%d failed)\n", report.Processed, report.Total, report.Failed())
	for _, res := range report.Results {
		if res.Status != "success" {
			fmt.Printf("  row %d: %s\n", res.Row, res.Message)
		}
	}
	return nil
}

func runTemplate(args []string) error {
	if len(args) < 2 {
		return errors.New("usage: fgconsole template <entity> <out.xlsx>")
	}
	entity, err := lookupEntity(args[0])
	if err != nil {
		return err
	}
	if err := upload.WriteTemplate(entity, args[1]); err != nil {
		return err
	}
	fmt.Println("wrote", args[1])
	return nil
}

func lookupWorkflowEntity(name string) (catalog.Entity, error) {
	entity, err := lookupEntity(name)
	if err != nil {
		return catalog.Entity{}, err
	}
	if !entity.Workflow {
		return catalog.Entity{}, fmt.Errorf("%s has no approval workflow", entity.Name)
	}
	return entity, nil
}

func runLines(ctx context.Context, client *api.Client, args []string) error {
	if len(args) < 2 {
		return errors.New("usage: fgconsole lines <entity> <id>")
	}
	entity, err := lookupWorkflowEntity(args[0])
	if err != nil {
		return err
	}
	lines, err := approval.NewClient(client, entity.Path).Lines(ctx, args[1])
	if err != nil {
		return err
	}
	if len(lines) == 0 {
		fmt.Println("no lines")
		return nil
	}
	for _, line := range lines {
		fmt.Printf("%s  %-30s  qty %.2f  price %.2f  disc %.1f%%  [%s]", line.ID, line.Description, line.Quantity, line.Price, line.Discount, line.Status)
		if line.Remark != "" {
			fmt.Printf("  %s", line.Remark)
		}
		fmt.Println()
	}
	return nil
}

func runDecision(ctx context.Context, client *api.Client, action string, args []string) error {
	if len(args) < 3 {
		return fmt.Errorf("usage: fgconsole %s <entity> <id> <line> [remark]", action)
	}
	if sess := session.FromContext(ctx); sess == nil || !sess.CanApprove() {
		return errors.New("your role cannot approve or reject")
	}
	entity, err := lookupWorkflowEntity(args[0])
	if err != nil {
		return err
	}
	var remark string
	if len(args) > 3 {
		remark = args[3]
	}

	wf := approval.NewClient(client, entity.Path)
	if action == "approve" {
		err = wf.Approve(ctx, args[1], args[2], remark)
	} else {
		err = wf.Reject(ctx, args[1], args[2], remark)
	}
	if err != nil {
		return err
	}
	fmt.Printf("%sd line %s\n", action, args[2])
	return nil
}

func runRevisions(ctx context.Context, client *api.Client, args []string) error {
	if len(args) < 2 {
		return errors.New("usage: fgconsole revisions <entity> <id>")
	}
	entity, err := lookupWorkflowEntity(args[0])
	if err != nil {
		return err
	}
	revs, err := approval.NewClient(client, entity.Path).Revisions(ctx, args[1])
	if err != nil {
		return err
	}
	if len(revs) == 0 {
		fmt.Println("no revisions")
		return nil
	}
	for _, rev := range revs {
		fmt.Printf("#%d  %-10s  %s  %s\n", rev.Number, rev.Status, rev.CreatedAt, rev.Remark)
	}
	return nil
}

func runQuotePDF(ctx context.Context, cfg *app.Config, client *api.Client, args []string) error {
	if len(args) < 2 {
		return errors.New("usage: fgconsole quote-pdf <proposal-id> <out.pdf>")
	}
	id, outPath := args[0], args[1]

	var doc struct {
		Data api.Record `json:"data"`
	}
	if err := client.Do(ctx, "GET", "proposals/"+id, nil, nil, &doc); err != nil {
		return err
	}
	lines, err := approval.NewClient(client, "proposals").Lines(ctx, id)
	if err != nil {
		return err
	}

	quote := report.Quote{
		Number:       doc.Data.String("proposalno"),
		Date:         time.Now(),
		CustomerName: doc.Data.String("customername"),
		CustomerCity: doc.Data.String("dealercity"),
		Reference:    doc.Data.String("reference"),
	}
	for _, line := range lines {
		quote.Lines = append(quote.Lines, report.QuoteLine{
			Description: line.Description,
			Quantity:    line.Quantity,
			Rate:        line.Price,
			Discount:    line.Discount,
		})
	}

	pdf, err := report.NewClient(cfg.GotenbergURL).RenderQuotePDF(ctx, quote)
	if err != nil {
		return err
	}
	if err := os.WriteFile(outPath, pdf, 0o644); err != nil {
		return err
	}
	fmt.Println("wrote", outPath)
	return nil
}
