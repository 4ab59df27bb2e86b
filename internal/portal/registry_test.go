package portal

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/JakeFAU/renewables-newsroom/internal/pipeline"
)

func names(portals []pipeline.SourcePortal) []string {
	out := make([]string, 0, len(portals))
	for _, p := range portals {
		out = append(out, p.Name)
	}
	return out
}

func TestRegistryOrdersByPriorityStable(t *testing.T) {
	t.Parallel()

	reg, err := NewRegistry(Defaults())
	require.NoError(t, err)
	require.Equal(t, []string{
		"Energías Renovables Argentina",
		"Energía Online Argentina",
		"PV Magazine LATAM",
		"Energía Estratégica",
	}, names(reg.All()))
}

func TestRegistryFilter(t *testing.T) {
	t.Parallel()

	reg, err := NewRegistry(Defaults())
	require.NoError(t, err)

	tests := []struct {
		filter string
		want   int
	}{
		{filter: "all", want: 4},
		{filter: "todos", want: 4},
		{filter: "", want: 4},
		{filter: "argentina", want: 2},
		{filter: "argentina_only", want: 2},
		{filter: "Regional", want: 2},
	}
	for _, tc := range tests {
		t.Run(tc.filter, func(t *testing.T) {
			t.Parallel()
			got, err := reg.Filter(tc.filter)
			require.NoError(t, err)
			require.Len(t, got, tc.want)
		})
	}

	regional, err := reg.Filter("regional")
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"PV Magazine LATAM", "Energía Estratégica"}, names(regional))
}

func TestRegistryUnknownFilter(t *testing.T) {
	t.Parallel()

	reg, err := NewRegistry(Defaults())
	require.NoError(t, err)
	_, err = reg.Filter("europa")
	require.True(t, errors.Is(err, ErrUnknownFilter))

	var inputErr *pipeline.InputError
	require.ErrorAs(t, err, &inputErr)
}

func TestNewRegistryRejectsBadPortals(t *testing.T) {
	t.Parallel()

	_, err := NewRegistry([]pipeline.SourcePortal{{Name: "x", BaseURL: "ftp://x"}})
	require.ErrorIs(t, err, pipeline.ErrBadURL)

	_, err = NewRegistry([]pipeline.SourcePortal{{BaseURL: "https://x"}})
	require.ErrorIs(t, err, pipeline.ErrEmpty)

	_, err = NewRegistry([]pipeline.SourcePortal{
		{Name: "x", BaseURL: "https://x"},
		{Name: "x", BaseURL: "https://y"},
	})
	require.Error(t, err)
}

func TestLoadFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "portals.yaml")
	body := `portals:
  - name: Solar Hoy
    url: https://solarhoy.example/
    priority: 2
    region: argentina
    specialty: mercado_local
    selectors: [".card", "article"]
  - name: Eolica Sur
    url: https://eolicasur.example/
    priority: 1
    region: regional
    render: true
`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	reg, err := LoadFile(path)
	require.NoError(t, err)
	all := reg.All()
	require.Equal(t, []string{"Eolica Sur", "Solar Hoy"}, names(all))
	require.True(t, all[0].Render)
	require.Equal(t, []string{".card", "article"}, all[1].Selectors)
}

func TestLoadFileEmpty(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "portals.yaml")
	require.NoError(t, os.WriteFile(path, []byte("portals: []\n"), 0o600))
	_, err := LoadFile(path)
	require.ErrorIs(t, err, pipeline.ErrEmpty)
}
