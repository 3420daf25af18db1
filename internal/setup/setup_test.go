package setup

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rwi-modeling/backend/internal/models"
	"github.com/rwi-modeling/backend/internal/parser"
	"github.com/rwi-modeling/backend/internal/testutil"
)

const richSetup = "Format type:keyword version: 1.1.0\n" +
	"begin_<project> rich\n" +
	"begin_<globals>\n" +
	"frequency 28000\n" +
	"end_<globals>\n" +
	"begin_<antenna> tx\n" +
	"power 0\n" +
	"waveform carrier\n" +
	"begin_<MimoElement>\n" +
	"position 1 2 3\n" +
	"antenna 4\n" +
	"rotation 0 0 90\n" +
	"end_<MimoElement>\n" +
	"begin_<pattern>\n" +
	"isotropic\n" +
	"end_<pattern>\n" +
	"end_<antenna>\n" +
	"begin_<studyarea> area\n" +
	"autoboundary 1\n" +
	"end_<studyarea>\n" +
	"end_<project>\n"

func TestSetupFile_RoundTrip(t *testing.T) {
	s, err := ReadSetupFile(strings.NewReader(testutil.SampleSetup), "sample.setup")
	require.NoError(t, err)

	require.Len(t, s.Antennas(), 1)
	a := s.Antennas()[0]
	assert.Equal(t, "array", a.Name())
	require.Len(t, a.MimoElements(), 2)
	assert.Equal(t, "0.5 0 0", a.MimoElements()[1].Position)
	assert.Equal(t, "1", a.MimoElements()[1].Antenna)
	assert.Equal(t, "end_<project>\n", s.Tail())

	assert.Equal(t, testutil.SampleSetup, s.Serialize())
}

func TestSetupFile_PreservesUnknownBlocks(t *testing.T) {
	s, err := ReadSetupFile(strings.NewReader(richSetup), "rich.setup")
	require.NoError(t, err)

	assert.Contains(t, s.Head(), "frequency 28000\n")
	assert.True(t, strings.HasPrefix(s.Tail(), "begin_<studyarea> area\n"))

	a, ok := s.Antenna("tx")
	require.True(t, ok)
	assert.Equal(t, "power 0\nwaveform carrier\n", a.Head())
	assert.Equal(t, "begin_<pattern>\nisotropic\nend_<pattern>\nend_<antenna>\n", a.Tail())
	require.Len(t, a.MimoElements(), 1)
	assert.Equal(t, "rotation 0 0 90", "rotation "+a.MimoElements()[0].Rotation)

	assert.Equal(t, richSetup, s.Serialize())

	_, ok = s.Antenna("rx")
	assert.False(t, ok)
}

func TestSetupFile_Errors(t *testing.T) {
	t.Run("missing project end", func(t *testing.T) {
		cut := strings.Index(testutil.SampleSetup, "end_<project>")
		_, err := ReadSetupFile(strings.NewReader(testutil.SampleSetup[:cut]), "cut")
		assert.ErrorIs(t, err, models.ErrMissingBoundary)
	})

	t.Run("element out of order", func(t *testing.T) {
		bad := strings.Replace(testutil.SampleSetup, "antenna 1\nrotation 0 0 0\n", "rotation 0 0 0\nantenna 1\n", 1)
		_, err := ReadSetupFile(strings.NewReader(bad), "bad")
		var pe *models.ParseError
		require.ErrorAs(t, err, &pe)
		assert.Equal(t, 6, pe.Line)
		assert.Equal(t, "rotation 0 0 0", pe.Found)
	})
}

func TestNewSetupFile(t *testing.T) {
	s, err := NewSetupFile("fresh")
	require.NoError(t, err)

	a, err := NewAntenna("grid")
	require.NoError(t, err)
	a.AddMimoElements(
		&MimoElement{Position: "0 0 0", Antenna: "1", Rotation: "0 0 0"},
		&MimoElement{Position: "0 0 0", Antenna: "1", Rotation: "0 0 0"},
	)
	s.AddAntennas(a)

	text := s.Serialize()
	assert.True(t, strings.HasPrefix(text, DefaultSetupHead+"begin_<antenna> grid\nbegin_<MimoElement>\n"))
	assert.True(t, strings.HasSuffix(text, "end_<MimoElement>\nend_<antenna>\n"+DefaultSetupTail))

	again, err := ReadSetupFile(strings.NewReader(text), "fresh")
	require.NoError(t, err)
	assert.Equal(t, text, again.Serialize())

	_, err = NewAntenna(strings.Repeat("x", 72))
	assert.ErrorIs(t, err, models.ErrNameTooLong)
}

func TestArrangeLinear(t *testing.T) {
	s, err := ReadSetupFile(strings.NewReader(testutil.SampleSetup), "sample.setup")
	require.NoError(t, err)
	a := s.Antennas()[0]

	a.ArrangeLinear(models.Vec3{0, 0, 2}, 0, 0.25)
	assert.Equal(t, "0 0 2", a.MimoElements()[0].Position)
	assert.Equal(t, "0.25 0 2", a.MimoElements()[1].Position)

	a.ArrangeLinear(models.Vec3{1, 1, 0}, 90, 0.5)
	assert.Equal(t, "1 1 0", a.MimoElements()[0].Position)
	assert.Equal(t, "1 1.5 0", a.MimoElements()[1].Position)

	a.ArrangeLinear(models.Vec3{0, 0, 0}, 45, 1)
	assert.Equal(t, "0.70711 0.70711 0", a.MimoElements()[1].Position)
}

func TestMimoElement_Translate(t *testing.T) {
	m := &MimoElement{Position: "1 2 3", Antenna: "1", Rotation: "0 0 0"}
	m.Translate(models.Vec3{0.5, -2, 0})
	assert.Equal(t, "1.5 0 3", m.Position)

	p, ok := m.Point()
	require.True(t, ok)
	assert.Equal(t, models.Vec3{1.5, 0, 3}, p)

	odd := &MimoElement{Position: "auto"}
	odd.Translate(models.Vec3{1, 1, 1})
	assert.Equal(t, "auto", odd.Position)
}

func TestSetupFile_TranslateAndClone(t *testing.T) {
	s, err := ReadSetupFile(strings.NewReader(testutil.SampleSetup), "sample.setup")
	require.NoError(t, err)
	cp := s.Clone()

	s.Translate(models.Vec3{1, 0, 0})
	assert.Equal(t, "1.5 0 0", s.Antennas()[0].MimoElements()[1].Position)
	assert.Equal(t, testutil.SampleSetup, cp.Serialize())

	s.Translate(models.Vec3{-1, 0, 0})
	assert.Equal(t, testutil.SampleSetup, s.Serialize())
}

func TestParseMimoElement_Truncated(t *testing.T) {
	r := parser.NewLineReader(strings.NewReader("begin_<MimoElement>\nposition 0 0 0\n"))
	_, err := ParseMimoElement(r)
	assert.ErrorIs(t, err, models.ErrMissingBoundary)
}

func TestSetupSummary(t *testing.T) {
	s, err := ReadSetupFile(strings.NewReader(testutil.SampleSetup), "sample.setup")
	require.NoError(t, err)

	sum := s.Summary()
	assert.Equal(t, "setup", sum.Type)
	require.Len(t, sum.Children, 1)
	assert.Equal(t, "antenna", sum.Children[0].Type)
	assert.Len(t, sum.Children[0].Children, 2)
}
