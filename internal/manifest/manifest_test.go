package manifest

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

const stockManifest = `# Audio transcription tool dependencies
openai-whisper>=20231117
torch>=1.10.0
torchaudio>=0.10.0
numpy>=1.21.0

# Audio handling
ffmpeg-python>=0.2.0
librosa>=0.9.0
soundfile>=0.10.0
`

func TestParseStockManifest(t *testing.T) {
	t.Parallel()

	m, err := Parse(strings.NewReader(stockManifest))
	require.NoError(t, err)
	require.Len(t, m.Requirements, 7)
	require.NoError(t, m.Validate())

	require.Equal(t, []string{
		"ffmpeg-python",
		"librosa",
		"numpy",
		"openai-whisper",
		"soundfile",
		"torch",
		"torchaudio",
	}, m.PackageNames())
}

func TestParseRequirementWithConstraint(t *testing.T) {
	t.Parallel()

	tests := []struct {
		line    string
		name    string
		op      string
		version string
	}{
		{line: "openai-whisper>=20231117", name: "openai-whisper", op: ">=", version: "20231117"},
		{line: "torch>=1.10.0", name: "torch", op: ">=", version: "1.10.0"},
		{line: "numpy==1.26.4", name: "numpy", op: "==", version: "1.26.4"},
		{line: "librosa~=0.9", name: "librosa", op: "~=", version: "0.9"},
		{line: "soundfile<1.0", name: "soundfile", op: "<", version: "1.0"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.line, func(t *testing.T) {
			t.Parallel()

			m, err := Parse(strings.NewReader(tt.line))
			require.NoError(t, err)
			require.Len(t, m.Requirements, 1)

			req := m.Requirements[0]
			require.Equal(t, tt.name, req.Name)
			require.Len(t, req.Constraints, 1)
			require.Equal(t, tt.op, req.Constraints[0].Op)
			require.Equal(t, tt.version, req.Constraints[0].Version)
		})
	}
}

func TestParseBareRequirement(t *testing.T) {
	t.Parallel()

	m, err := Parse(strings.NewReader("numpy\n"))
	require.NoError(t, err)
	require.Len(t, m.Requirements, 1)
	require.Equal(t, "numpy", m.Requirements[0].Name)
	require.Empty(t, m.Requirements[0].Constraints)
}

func TestParseMultipleConstraints(t *testing.T) {
	t.Parallel()

	m, err := Parse(strings.NewReader("torch>=1.10.0,<3.0"))
	require.NoError(t, err)

	req := m.Requirements[0]
	require.Len(t, req.Constraints, 2)
	require.Equal(t, Constraint{Op: ">=", Version: "1.10.0"}, req.Constraints[0])
	require.Equal(t, Constraint{Op: "<", Version: "3.0"}, req.Constraints[1])
	require.Equal(t, "torch>=1.10.0,<3.0", req.String())
}

func TestParseSkipsCommentsAndBlankLines(t *testing.T) {
	t.Parallel()

	input := "\n# full comment\n  \ntorch>=1.10.0  # inline comment\n"
	m, err := Parse(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, m.Requirements, 1)
	require.Equal(t, "torch", m.Requirements[0].Name)
	require.Equal(t, 4, m.Requirements[0].Line)
}

func TestParseMalformedLinesReportLineNumber(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
	}{
		{name: "missing name", input: "torch>=1.0\n>=2.0\n"},
		{name: "bad name", input: "torch>=1.0\n-torch>=1.0\n"},
		{name: "operator without version", input: "torch>=1.0\nnumpy>=\n"},
		{name: "garbage specifier", input: "torch>=1.0\nnumpy@1.0\n"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := Parse(strings.NewReader(tt.input))
			require.Error(t, err)
			require.ErrorIs(t, err, ErrInvalidRequirement)
			require.Contains(t, err.Error(), "line 2")
		})
	}
}

func TestValidateRejectsDuplicates(t *testing.T) {
	t.Parallel()

	m, err := Parse(strings.NewReader("torch>=1.10.0\nTorch==2.0\n"))
	require.NoError(t, err)

	err = m.Validate()
	require.ErrorIs(t, err, ErrDuplicatePackage)
}

func TestValidateTreatsNormalizedNamesAsDuplicates(t *testing.T) {
	t.Parallel()

	m, err := Parse(strings.NewReader("ffmpeg-python>=0.2.0\nffmpeg_python>=0.2.0\n"))
	require.NoError(t, err)
	require.ErrorIs(t, m.Validate(), ErrDuplicatePackage)
}

func TestLookupUsesNormalizedNames(t *testing.T) {
	t.Parallel()

	m, err := Parse(strings.NewReader("openai-whisper>=20231117\n"))
	require.NoError(t, err)

	req, ok := m.Lookup("Openai_Whisper")
	require.True(t, ok)
	require.Equal(t, "openai-whisper", req.Name)

	_, ok = m.Lookup("torch")
	require.False(t, ok)
}
