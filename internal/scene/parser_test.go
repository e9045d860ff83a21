package scene

import (
	"strings"
	"testing"

	"github.com/houdini-kb/hipindex/internal/cpio"
	"github.com/houdini-kb/hipindex/internal/model"
	"github.com/stretchr/testify/require"
)

func entry(path, body string) cpio.Entry {
	return cpio.Entry{Path: path, Data: []byte(body), Size: uint32(len(body))}
}

func TestParse_TwoParamPyroScene(t *testing.T) {
	body := "type = pyrosolver::2.0\n" +
		"name = pyro_solver1\n" +
		"parm {\n" +
		"  name dissipation\n" +
		"  value 0.05\n" +
		"}\n" +
		"parm {\n" +
		"  name cooling_rate\n" +
		"  value 0.3\n" +
		"  parmdef\n" +
		"}\n"

	sc := Parse([]cpio.Entry{entry("obj/geo1/pyro_solver1", body)})

	require.Len(t, sc.Nodes, 1)
	n := sc.Nodes[0]
	require.Equal(t, "/obj/geo1/pyro_solver1/pyro_solver1", n.Path)
	require.Equal(t, "pyrosolver::2.0", n.Type)
	require.Equal(t, model.CategoryDOP, n.Category)
	require.Len(t, n.Parameters, 2)

	require.Equal(t, "dissipation", n.Parameters[0].Name)
	require.Equal(t, model.ValueFloat, n.Parameters[0].Value.Kind)
	require.InDelta(t, 0.05, n.Parameters[0].Value.Float, 1e-9)
	require.True(t, n.Parameters[0].IsDefault)

	require.Equal(t, "cooling_rate", n.Parameters[1].Name)
	require.InDelta(t, 0.3, n.Parameters[1].Value.Float, 1e-9)
	require.False(t, n.Parameters[1].IsDefault)
}

func TestParse_ConnectionExtraction(t *testing.T) {
	body := "type = merge\n" +
		"name = merge1\n" +
		"wire /obj/geo1/a 0 /obj/geo1/merge1 1\n"

	sc := Parse([]cpio.Entry{entry("obj/geo1/merge", body)})

	require.Len(t, sc.Connections, 1)
	c := sc.Connections[0]
	require.Equal(t, "/obj/geo1/a", c.FromPath)
	require.Equal(t, 0, c.FromOutput)
	require.Equal(t, "/obj/geo1/merge1", c.ToPath)
	require.Equal(t, 1, c.ToInput)
}

func TestParse_NumericCoercion(t *testing.T) {
	body := "type = testnode\n" +
		"name = n1\n" +
		"parm {\n name scalar\n value 3.14\n}\n" +
		"parm {\n name vec\n value 1 2 3\n}\n" +
		"parm {\n name str\n value hello world\n}\n"

	sc := Parse([]cpio.Entry{entry("obj/geo1/n1", body)})
	require.Len(t, sc.Nodes, 1)
	params := sc.Nodes[0].Parameters
	require.Len(t, params, 3)

	require.Equal(t, model.ValueFloat, params[0].Value.Kind)
	require.InDelta(t, 3.14, params[0].Value.Float, 1e-9)

	require.Equal(t, model.ValueFloatSeq, params[1].Value.Kind)
	require.Equal(t, []float64{1, 2, 3}, params[1].Value.Seq)

	require.Equal(t, model.ValueText, params[2].Value.Kind)
	require.Equal(t, "hello world", params[2].Value.Text)
}

func TestParse_ExpressionForcesNonDefault(t *testing.T) {
	body := "type = testnode\n" +
		"name = n1\n" +
		"parm {\n name tx\n value 0\n expression $FF*0.1\n}\n"

	sc := Parse([]cpio.Entry{entry("obj/geo1/n1", body)})
	p := sc.Nodes[0].Parameters[0]
	require.False(t, p.IsDefault)
	require.Equal(t, "$FF*0.1", p.Expression)
}

func TestParse_Flags(t *testing.T) {
	body := "type = testnode\n" +
		"name = n1\n" +
		"flags = display on bypass=1 template=0 lock\n"

	sc := Parse([]cpio.Entry{entry("obj/geo1/n1", body)})
	n := sc.Nodes[0]
	require.True(t, n.Flags["display"])
	require.True(t, n.Flags["bypass"])
	require.False(t, n.Flags["template"])
	require.True(t, n.Flags["lock"])
}

func TestParse_MalformedStanzaIsSkippedSilently(t *testing.T) {
	body := "type = testnode\n" +
		"name = n1\n" +
		"this is garbage we do not understand\n" +
		"parm {\n value orphaned-without-name\n}\n" +
		"parm {\n name ok\n value 1\n}\n"

	sc := Parse([]cpio.Entry{entry("obj/geo1/n1", body)})
	require.Len(t, sc.Nodes, 1)
	require.Len(t, sc.Nodes[0].Parameters, 1)
	require.Equal(t, "ok", sc.Nodes[0].Parameters[0].Name)
}

func TestParse_EmptyArchiveYieldsEmptyScene(t *testing.T) {
	sc := Parse(nil)
	require.Empty(t, sc.Nodes)
	require.Empty(t, sc.Connections)
}

func TestParse_HeaderMetadata(t *testing.T) {
	header := entry(".hip", `houdini_version = "19.5.640"
_HIP_SAVETIME = "Tue Jan 14 10:22:00 2025"
author = studio_pipeline
`)
	sc := Parse([]cpio.Entry{header})
	require.Equal(t, "19.5.640", sc.HipVersion)
	require.Equal(t, "Tue Jan 14 10:22:00 2025", sc.SaveTime)
	require.Equal(t, "studio_pipeline", sc.Metadata["author"])
}

func TestParse_InvariantsHold(t *testing.T) {
	body := "type = geo::2.0\n" +
		"name = box1\n" +
		"parm {\n name size\n value 1\n}\n"
	sc := Parse([]cpio.Entry{entry("obj/geo1/box1", body)})

	for _, n := range sc.Nodes {
		require.True(t, strings.HasPrefix(n.Path, "/"))
		require.True(t, n.Category.Valid())
		for _, p := range n.Parameters {
			require.NotEmpty(t, p.Name)
			if p.HasExpression() {
				require.False(t, p.IsDefault)
			}
		}
	}
}
