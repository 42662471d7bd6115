package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"

	"github.com/zjrosen/toolasset/internal/inventory/domain"
)

// harness runs CLI invocations against one temp database and config path.
type harness struct {
	t       *testing.T
	dir     string
	cfgPath string
	dbPath  string
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	t.Setenv("TOOLASSET_ACTOR", "cli-tester")
	t.Setenv("TOOLASSET_DEBUG", "")
	dir := t.TempDir()
	return &harness{
		t:       t,
		dir:     dir,
		cfgPath: filepath.Join(dir, "config.yaml"),
		dbPath:  filepath.Join(dir, "tool_asset.db"),
	}
}

func (h *harness) exec(stdin string, args ...string) (string, error) {
	h.t.Helper()
	c := &cli{v: viper.New()}
	defer c.close()

	var out, errOut bytes.Buffer
	root := newRootCmd(c)
	root.SetArgs(append([]string{"--config", h.cfgPath, "--db", h.dbPath, "--no-color"}, args...))
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetIn(strings.NewReader(stdin))
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func (h *harness) run(args ...string) string {
	h.t.Helper()
	out, err := h.exec("", args...)
	require.NoError(h.t, err, "toolasset %s", strings.Join(args, " "))
	return out
}

func (h *harness) runJSON(v any, args ...string) {
	h.t.Helper()
	out := h.run(append([]string{"--json"}, args...)...)
	require.NoError(h.t, json.Unmarshal([]byte(out), v), out)
}

func (h *harness) fail(args ...string) error {
	h.t.Helper()
	_, err := h.exec("", args...)
	require.Error(h.t, err, "toolasset %s", strings.Join(args, " "))
	return err
}

func (h *harness) addInsert() string {
	h.t.Helper()
	var created map[string]string
	h.runJSON(&created, "parts", "add", "--layer", "INSERT", "--category", "MILLING_INSERT",
		"--part-no", "APMT1135", "--maker", "SANDVIK")
	return created["asset_code"]
}

func TestParts_AddAndShow(t *testing.T) {
	h := newHarness(t)

	require.Equal(t, "INSERT_00000001", h.addInsert())
	require.Equal(t, "INSERT_00000002\n", h.run("parts", "add", "--layer", "INSERT", "--category", "MILLING_INSERT",
		"--part-no", "APMT1604", "--maker", "SANDVIK"))

	var part domain.Part
	h.runJSON(&part, "parts", "show", "INSERT_00000001")
	require.Equal(t, "APMT1135", part.PartNo)
	require.Equal(t, "APMT1135", part.DisplayName)
	require.Equal(t, domain.StatusActive, part.Status)

	out := h.run("parts", "list")
	require.Contains(t, out, "INSERT_00000001")
	require.Contains(t, out, "INSERT_00000002")
}

func TestParts_ValidationAndNotFoundExitCodes(t *testing.T) {
	h := newHarness(t)

	err := h.fail("parts", "add", "--layer", "TOOL_BODY", "--category", "MILLING_INSERT",
		"--part-no", "X", "--maker", "Y")
	require.ErrorIs(t, err, domain.ErrInvalidArgument)
	require.Equal(t, 2, ExitCode(err))

	err = h.fail("parts", "show", "INSERT_00000099")
	require.ErrorIs(t, err, domain.ErrNotFound)
	require.Equal(t, 3, ExitCode(err))

	err = h.fail("parts", "update", "INSERT_00000099", "bogus_field=1")
	require.Equal(t, 2, ExitCode(err))
}

func TestParts_UpdateArchiveRestoreHistory(t *testing.T) {
	h := newHarness(t)
	code := h.addInsert()

	h.run("parts", "update", code, "stock_qty=12", "supplier=Tool Center", "--reason", "stocktake")

	err := h.fail("parts", "archive", code)
	require.Equal(t, 2, ExitCode(err))

	h.run("parts", "archive", code, "--reason", "worn out")
	var archived []domain.Part
	h.runJSON(&archived, "parts", "list", "--status", "archived")
	require.Len(t, archived, 1)
	require.Equal(t, code, archived[0].AssetCode)

	h.run("parts", "restore", code)

	var history []domain.OperationLog
	h.runJSON(&history, "parts", "history", code)
	actions := make([]string, 0, len(history))
	for _, entry := range history {
		actions = append(actions, entry.Action)
		require.Equal(t, "cli-tester", entry.Actor)
	}
	require.Equal(t, []string{
		domain.ActionPartAdd, domain.ActionPartUpdate, domain.ActionPartArchive, domain.ActionPartRestore,
	}, actions)
	require.Equal(t, "worn out", *history[2].Reason)

	out := h.run("parts", "history", code)
	require.Contains(t, out, "stock_qty")
	require.Contains(t, out, "PART_ARCHIVE")
}

func TestAssemblies_ComposeWithItemsUsesSignature(t *testing.T) {
	h := newHarness(t)
	h.run("parts", "add", "--layer", "HOLDER", "--category", "BT_HOLDER", "--part-no", "BT40", "--maker", "BIG")
	insert := h.addInsert()

	var created map[string]string
	h.runJSON(&created, "assemblies", "add", "--item", "HOLDER_00000001:1", "--item", insert+":5:insert")
	require.Equal(t, "ASM_00000001", created["assembly_code"])

	var detail struct {
		AssemblyCode string                `json:"assembly_code"`
		DisplayName  string                `json:"display_name"`
		Signature    string                `json:"signature"`
		Items        []domain.AssemblyItem `json:"items"`
	}
	h.runJSON(&detail, "assemblies", "show", "ASM_00000001")
	require.Equal(t, "HOLDER_00000001_INSERT_00000001", detail.Signature)
	require.Equal(t, detail.Signature, detail.DisplayName)
	require.Len(t, detail.Items, 2)

	require.Equal(t, "HOLDER_00000001_INSERT_00000001\n", h.run("assemblies", "signature", "ASM_00000001"))

	h.run("assemblies", "update", "ASM_00000001", "--name", "roughing")
	itemID := fmt.Sprint(detail.Items[1].ItemID)
	h.run("assemblies", "remove-item", "ASM_00000001", itemID)

	var sig map[string]string
	h.runJSON(&sig, "assemblies", "signature", "ASM_00000001", "--apply")
	require.Equal(t, "HOLDER_00000001", sig["signature"])

	err := h.fail("assemblies", "remove-item", "ASM_00000001", itemID)
	require.Equal(t, 3, ExitCode(err))
}

func TestAssemblies_AddRejectsBadItemSpec(t *testing.T) {
	h := newHarness(t)
	err := h.fail("assemblies", "add", "--item", "HOLDER_00000001:lots")
	require.Equal(t, 2, ExitCode(err))
}

func TestToolingLists_ReplaceFromFile(t *testing.T) {
	h := newHarness(t)
	h.run("parts", "add", "--layer", "HOLDER", "--category", "BT_HOLDER", "--part-no", "BT40", "--maker", "BIG")
	h.run("assemblies", "add", "--name", "A1", "--item", "HOLDER_00000001:1")
	h.run("assemblies", "add", "--name", "A2")

	var created map[string]string
	h.runJSON(&created, "tooling-lists", "add", "--title", "OP10")
	list := created["list_code"]
	require.Equal(t, "TL_00000001", list)

	h.run("tooling-lists", "add-item", list, "1", "ASM_00000001")

	dup := filepath.Join(h.dir, "dup.json")
	require.NoError(t, os.WriteFile(dup, []byte(`[
		{"tool_no": 2, "assembly_code": "ASM_00000001"},
		{"tool_no": "2", "assembly_code": "ASM_00000002"}
	]`), 0o600))
	err := h.fail("tooling-lists", "replace", list, "--file", dup)
	require.Equal(t, 2, ExitCode(err))

	var detail struct {
		Items []domain.ToolingListItem `json:"items"`
	}
	h.runJSON(&detail, "tooling-lists", "show", list)
	require.Len(t, detail.Items, 1, "rejected batch must leave items untouched")

	batch := `[
		{"tool_no": "10", "assembly_code": "ASM_00000002", "qty": "2"},
		{"tool_no": 2, "assembly_code": "ASM_00000001", "note": "finishing"}
	]`
	out, err := h.exec(batch, "--json", "tooling-lists", "replace", list)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal([]byte(out), &detail))
	require.Len(t, detail.Items, 2)
	require.Equal(t, "2", detail.Items[0].ToolNo)
	require.Equal(t, "10", detail.Items[1].ToolNo)
	require.InDelta(t, 2.0, detail.Items[1].Qty, 1e-9)

	var lists []domain.ToolingList
	h.runJSON(&lists, "tooling-lists", "list")
	require.Len(t, lists, 1)
}

func TestCatalog(t *testing.T) {
	h := newHarness(t)

	var layers []struct {
		Code string `json:"code"`
	}
	h.runJSON(&layers, "catalog", "layers")
	codes := make([]string, 0, len(layers))
	for _, l := range layers {
		codes = append(codes, l.Code)
	}
	require.Contains(t, codes, "INSERT")
	require.Contains(t, codes, "SCREW")

	require.Contains(t, h.run("catalog", "categories", "--layer", "INSERT"), "MILLING_INSERT")

	err := h.fail("catalog", "categories", "--layer", "BOGUS")
	require.Equal(t, 2, ExitCode(err))
}

func TestDB_StatusAndUpgrade(t *testing.T) {
	h := newHarness(t)

	var status []struct {
		Version   string  `json:"version"`
		AppliedAt *string `json:"applied_at"`
	}
	h.runJSON(&status, "db", "status")
	require.NotEmpty(t, status)
	for _, m := range status {
		require.Nil(t, m.AppliedAt, "%s should be pending", m.Version)
	}

	var upgraded map[string][]string
	h.runJSON(&upgraded, "db", "upgrade")
	require.Len(t, upgraded["applied"], len(status))

	h.runJSON(&upgraded, "db", "upgrade")
	require.Empty(t, upgraded["applied"])

	h.runJSON(&status, "db", "status")
	for _, m := range status {
		require.NotNil(t, m.AppliedAt, "%s should be applied", m.Version)
	}
}

func TestConfig_InitSetAndCodeFormat(t *testing.T) {
	h := newHarness(t)

	h.run("config", "init")
	require.FileExists(t, h.cfgPath)

	h.run("config", "set", "codes.width", "4")
	h.run("config", "set", "codes.separator", "-")

	data, err := os.ReadFile(h.cfgPath)
	require.NoError(t, err)
	require.Contains(t, string(data), "# Public code format")

	require.Equal(t, "INSERT-0001\n", h.run("parts", "add", "--layer", "INSERT", "--category", "MILLING_INSERT",
		"--part-no", "APMT1135", "--maker", "SANDVIK"))

	err = h.fail("config", "set", "colour", "blue")
	require.Equal(t, 2, ExitCode(err))
}

func TestInvalidConfigIsRejected(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, os.WriteFile(h.cfgPath, []byte("codes:\n  width: 0\n"), 0o600))

	err := h.fail("catalog", "layers")
	require.Contains(t, err.Error(), "codes.width")
}

func TestExitCode(t *testing.T) {
	require.Equal(t, 0, ExitCode(nil))
	require.Equal(t, 1, ExitCode(errors.New("boom")))
	require.Equal(t, 1, ExitCode(fmt.Errorf("insert: %w", domain.ErrConflict)))
	require.Equal(t, 2, ExitCode(domain.Invalid("qty", "must be > 0")))
	require.Equal(t, 3, ExitCode(fmt.Errorf("wrapped: %w", domain.NotFound(domain.KindPart, "X"))))
}

func TestParseItemSpec(t *testing.T) {
	tests := []struct {
		spec    string
		code    string
		qty     float64
		role    *string
		wantErr bool
	}{
		{spec: "HOLDER_00000001", code: "HOLDER_00000001", qty: 1},
		{spec: "INSERT_00000002:5", code: "INSERT_00000002", qty: 5},
		{spec: "INSERT_00000002:2.5:insert", code: "INSERT_00000002", qty: 2.5, role: strPtr("insert")},
		{spec: "SCREW_00000001::", code: "SCREW_00000001", qty: 1},
		{spec: "SCREW_00000001:x", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.spec, func(t *testing.T) {
			in, err := parseItemSpec(tt.spec)
			if tt.wantErr {
				require.ErrorIs(t, err, domain.ErrInvalidArgument)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.code, in.PartAssetCode)
			require.InDelta(t, tt.qty, in.Qty, 1e-9)
			require.Equal(t, tt.role, in.Role)
		})
	}
}

func strPtr(s string) *string { return &s }
