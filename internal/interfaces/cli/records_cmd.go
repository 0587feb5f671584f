package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/lite-lake/infra-dnsdesk/internal/domain"
	"github.com/lite-lake/infra-dnsdesk/internal/domain/entity"
)

// recordFlags binds the record field flags shared by create and update.
type recordFlags struct {
	recordType  string
	name        string
	content     string
	ttl         uint32
	mxPriority  uint16
	srvPriority uint16
	srvWeight   uint16
	srvPort     uint16
	caaFlags    uint8
	caaTag      string
}

func (f *recordFlags) bind(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.StringVarP(&f.recordType, "type", "t", "", "Record type (A, AAAA, CNAME, TXT, MX, NS, SRV, CAA)")
	flags.StringVarP(&f.name, "name", "n", "", "Host record relative to the zone, @ for the apex")
	flags.StringVarP(&f.content, "content", "c", "", "Record value")
	flags.Uint32Var(&f.ttl, "ttl", 600, "TTL in seconds")
	flags.Uint16Var(&f.mxPriority, "mx-priority", 0, "MX priority")
	flags.Uint16Var(&f.srvPriority, "srv-priority", 0, "SRV priority")
	flags.Uint16Var(&f.srvWeight, "srv-weight", 0, "SRV weight")
	flags.Uint16Var(&f.srvPort, "srv-port", 0, "SRV port")
	flags.Uint8Var(&f.caaFlags, "caa-flags", 0, "CAA flags")
	flags.StringVar(&f.caaTag, "caa-tag", "", "CAA tag (issue, issuewild, iodef)")
}

// fields builds the request fields. Structured values are only set when
// their flag was given, so validation reports them as missing otherwise.
func (f *recordFlags) fields(cmd *cobra.Command) entity.RecordFields {
	changed := cmd.Flags().Changed
	out := entity.RecordFields{
		RecordType: entity.RecordType(strings.ToUpper(strings.TrimSpace(f.recordType))),
		Name:       f.name,
		Content:    f.content,
		TTL:        f.ttl,
	}
	if changed("mx-priority") {
		out.MXPriority = entity.Ptr(f.mxPriority)
	}
	if changed("srv-priority") {
		out.SRVPriority = entity.Ptr(f.srvPriority)
	}
	if changed("srv-weight") {
		out.SRVWeight = entity.Ptr(f.srvWeight)
	}
	if changed("srv-port") {
		out.SRVPort = entity.Ptr(f.srvPort)
	}
	if changed("caa-flags") {
		out.CAAFlags = entity.Ptr(f.caaFlags)
	}
	if changed("caa-tag") {
		out.CAATag = entity.Ptr(f.caaTag)
	}
	return out
}

// zoneArgs are the leading <provider> <zone-id> <zone-name> arguments.
type zoneArgs struct {
	provider entity.Provider
	zoneID   string
	zoneName string
}

func parseZoneArgs(args []string) (zoneArgs, error) {
	p, err := entity.ParseProvider(args[0])
	if err != nil {
		return zoneArgs{}, err
	}
	z := zoneArgs{provider: p, zoneID: strings.TrimSpace(args[1]), zoneName: strings.TrimSpace(args[2])}
	if z.zoneName == "" {
		return zoneArgs{}, domain.RequiredField("zone name")
	}
	return z, nil
}

func newRecordsCommand(app *App) *cobra.Command {
	recordsCmd := &cobra.Command{
		Use:     "records",
		Aliases: []string{"record"},
		Short:   "List and edit DNS records in one zone",
	}

	listCmd := &cobra.Command{
		Use:   "list <provider> <zone-id> <zone-name>",
		Short: "List every record in a zone",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := app.commandContext(cmd.Context(), "records.list")
			z, err := parseZoneArgs(args)
			if err != nil {
				return err
			}
			svc, err := app.Records()
			if err != nil {
				return err
			}
			records, err := svc.List(ctx, z.provider, z.zoneID, z.zoneName)
			if err != nil {
				return err
			}
			if app.JSON {
				return app.printJSON(records)
			}
			if len(records) == 0 {
				fmt.Fprintln(app.Out, "No records found.")
				return nil
			}
			fmt.Fprintln(app.Out, renderTable([]string{"ID", "TYPE", "NAME", "VALUE", "TTL"}, recordRows(records), nil))
			return nil
		},
	}

	var (
		createFlags recordFlags
		overwrite   bool
	)
	createCmd := &cobra.Command{
		Use:   "create <provider> <zone-id> <zone-name>",
		Short: "Create a record",
		Long:  "Create a record. When a record with the same type and host exists the command fails unless --overwrite is given, in which case the single existing record is updated.",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := app.commandContext(cmd.Context(), "records.create")
			z, err := parseZoneArgs(args)
			if err != nil {
				return err
			}
			req := &entity.RecordCreateRequest{
				RecordFields:     createFlags.fields(cmd),
				ConflictStrategy: entity.ConflictDoNotCreate,
			}
			if overwrite {
				req.ConflictStrategy = entity.ConflictOverwrite
			}
			svc, err := app.Records()
			if err != nil {
				return err
			}
			rec, err := svc.Create(ctx, z.provider, z.zoneID, z.zoneName, req)
			if err != nil {
				return err
			}
			return printRecord(app, "created", rec)
		},
	}
	createFlags.bind(createCmd)
	createCmd.Flags().BoolVar(&overwrite, "overwrite", false, "Update the existing record instead of failing on conflict")

	var (
		updateFlags recordFlags
		recordID    string
	)
	updateCmd := &cobra.Command{
		Use:   "update <provider> <zone-id> <zone-name> --id <record-id>",
		Short: "Replace a record's fields",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := app.commandContext(cmd.Context(), "records.update")
			z, err := parseZoneArgs(args)
			if err != nil {
				return err
			}
			req := &entity.RecordUpdateRequest{ID: strings.TrimSpace(recordID), RecordFields: updateFlags.fields(cmd)}
			svc, err := app.Records()
			if err != nil {
				return err
			}
			rec, err := svc.Update(ctx, z.provider, z.zoneID, z.zoneName, req)
			if err != nil {
				return err
			}
			return printRecord(app, "updated", rec)
		},
	}
	updateFlags.bind(updateCmd)
	updateCmd.Flags().StringVar(&recordID, "id", "", "Provider record ID")

	var yes bool
	deleteCmd := &cobra.Command{
		Use:   "delete <provider> <zone-id> <zone-name> <record-id>",
		Short: "Delete a record",
		Args:  cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := app.commandContext(cmd.Context(), "records.delete")
			z, err := parseZoneArgs(args)
			if err != nil {
				return err
			}
			id := strings.TrimSpace(args[3])
			if id == "" {
				return domain.RequiredField("record id")
			}
			if !yes && !Confirm(app.input(), app.Err, fmt.Sprintf("Delete record %s from %s?", id, z.zoneName), false) {
				fmt.Fprintln(app.Err, "Cancelled.")
				return nil
			}
			svc, err := app.Records()
			if err != nil {
				return err
			}
			if err := svc.Delete(ctx, z.provider, z.zoneID, z.zoneName, id); err != nil {
				return err
			}
			if app.JSON {
				return app.printJSON(map[string]any{"id": id, "deleted": true})
			}
			fmt.Fprintln(app.Out, SuccessStyle.Render("✓")+" record "+id+" deleted")
			return nil
		},
	}
	deleteCmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the confirmation prompt")

	recordsCmd.AddCommand(listCmd)
	recordsCmd.AddCommand(createCmd)
	recordsCmd.AddCommand(updateCmd)
	recordsCmd.AddCommand(deleteCmd)
	return recordsCmd
}

func printRecord(app *App, verb string, rec *entity.DNSRecord) error {
	if app.JSON {
		return app.printJSON(rec)
	}
	fmt.Fprintf(app.Out, "%s record %s %s %s → %s\n", SuccessStyle.Render("✓"), verb, rec.RecordType, rec.Name, recordValue(*rec))
	if rec.ID != "" {
		fmt.Fprintln(app.Out, MutedStyle.Render("  id: "+rec.ID))
	}
	return nil
}
