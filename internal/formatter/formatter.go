// package formatter provides functions to export playlists of problems to various formats (CSV, Markdown, plain text, JSON)
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/desertthunder/cpx/internal/models"
	"github.com/desertthunder/cpx/internal/shared"
)

// Format names an export format.
type Format string

const (
	FormatCSV      Format = "csv"
	FormatMarkdown Format = "markdown"
	FormatText     Format = "txt"
	FormatJSON     Format = "json"
)

// ParseFormat accepts csv, md/markdown, txt/text and json.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "csv":
		return FormatCSV, nil
	case "md", "markdown":
		return FormatMarkdown, nil
	case "txt", "text":
		return FormatText, nil
	case "json", "":
		return FormatJSON, nil
	}
	return "", fmt.Errorf("%w: unknown export format %q", shared.ErrInvalidArgument, s)
}

// PlaylistMetadata is the playlist without its problems, written next to CSV exports.
type PlaylistMetadata struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Description  string    `json:"description"`
	UserID       string    `json:"userId"`
	ProblemCount int       `json:"problemCount"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// ExportToCSV converts a playlist to CSV with columns: Position, ID, Title, Difficulty, Tags, Added
func ExportToCSV(playlist *models.Playlist) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"Position", "ID", "Title", "Difficulty", "Tags", "Added"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for i, link := range playlist.Problems {
		title, difficulty, tags := problemFields(link)
		record := []string{
			strconv.Itoa(i + 1),
			link.ProblemID,
			title,
			difficulty,
			tags,
			link.CreatedAt.UTC().Format(time.RFC3339),
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ExportToMarkdown converts a playlist to Markdown with a difficulty summary.
func ExportToMarkdown(playlist *models.Playlist) ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "# %s\n\n", playlist.Name)
	if playlist.Description != "" {
		fmt.Fprintf(&buf, "**Description**: %s\n\n", playlist.Description)
	}

	fmt.Fprintf(&buf, "**Problems**: %d\n", len(playlist.Problems))
	if summary := difficultySummary(playlist); summary != "" {
		fmt.Fprintf(&buf, "**Difficulty**: %s\n", summary)
	}
	buf.WriteString("\n## Problems\n\n")

	if len(playlist.Problems) == 0 {
		buf.WriteString("_No problems yet._\n")
		return buf.Bytes(), nil
	}

	buf.WriteString("| # | Title | Difficulty | Tags |\n")
	buf.WriteString("|---|-------|------------|------|\n")
	for i, link := range playlist.Problems {
		title, difficulty, tags := problemFields(link)
		fmt.Fprintf(&buf, "| %d | %s | %s | %s |\n", i+1, escapeCell(title), difficulty, escapeCell(tags))
	}

	return buf.Bytes(), nil
}

// ExportToText converts a playlist to plain text format
func ExportToText(playlist *models.Playlist) ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "Playlist: %s\n", playlist.Name)
	if playlist.Description != "" {
		fmt.Fprintf(&buf, "Description: %s\n", playlist.Description)
	}
	fmt.Fprintf(&buf, "Problems: %d\n\n", len(playlist.Problems))

	for i, link := range playlist.Problems {
		title, difficulty, _ := problemFields(link)
		fmt.Fprintf(&buf, "%d. [%s] %s\n", i+1, difficulty, title)
	}

	return buf.Bytes(), nil
}

// ExportToJSON renders the playlist with its problems as indented JSON.
func ExportToJSON(playlist *models.Playlist) ([]byte, error) {
	return shared.MarshalJSON(playlist, true)
}

// ToMetadataJSON generates a JSON representation of playlist metadata (without problems)
func ToMetadataJSON(playlist *models.Playlist) ([]byte, error) {
	return shared.MarshalJSON(PlaylistMetadata{
		ID:           playlist.ID,
		Name:         playlist.Name,
		Description:  playlist.Description,
		UserID:       playlist.UserID,
		ProblemCount: len(playlist.Problems),
		CreatedAt:    playlist.CreatedAt,
		UpdatedAt:    playlist.UpdatedAt,
	}, true)
}

// CSVExportResult contains the paths of files created by WriteCSVExport
type CSVExportResult struct {
	ProblemsFile string
	MetadataFile string
}

// WriteCSVExport exports a playlist to CSV format with accompanying metadata JSON file.
//
// Defaults to playlist ID as the base filename & creates {base}_problems.csv and {base}_metadata.json
func WriteCSVExport(playlist *models.Playlist, baseFilepath string) (*CSVExportResult, error) {
	if baseFilepath == "" {
		baseFilepath = playlist.ID
	}

	csvData, err := ExportToCSV(playlist)
	if err != nil {
		return nil, fmt.Errorf("failed to generate CSV: %w", err)
	}

	problemsFile := baseFilepath + "_problems.csv"
	if err := os.WriteFile(problemsFile, csvData, 0644); err != nil {
		return nil, fmt.Errorf("failed to write CSV file: %w", err)
	}

	metadataJSON, err := ToMetadataJSON(playlist)
	if err != nil {
		return nil, fmt.Errorf("failed to generate metadata JSON: %w", err)
	}

	metadataFile := baseFilepath + "_metadata.json"
	if err := os.WriteFile(metadataFile, metadataJSON, 0644); err != nil {
		return nil, fmt.Errorf("failed to write metadata file: %w", err)
	}

	return &CSVExportResult{
		ProblemsFile: problemsFile,
		MetadataFile: metadataFile,
	}, nil
}

// WriteMarkdownExport exports a playlist to {dir}/README.md.
//
// Directory name defaults to the playlist ID.
func WriteMarkdownExport(playlist *models.Playlist, outputDir string) (string, error) {
	if outputDir == "" {
		outputDir = playlist.ID
	}

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create directory: %w", err)
	}

	mdData, err := ExportToMarkdown(playlist)
	if err != nil {
		return "", fmt.Errorf("failed to generate Markdown: %w", err)
	}

	mdFile := filepath.Join(outputDir, "README.md")
	if err := os.WriteFile(mdFile, mdData, 0644); err != nil {
		return "", fmt.Errorf("failed to write Markdown file: %w", err)
	}

	return mdFile, nil
}

// WriteTextExport exports a playlist to plain text format.
//
// Defaults to {playlist.ID}_problems.txt as the filename.
func WriteTextExport(playlist *models.Playlist, path string) (string, error) {
	if path == "" {
		path = fmt.Sprintf("%s_problems.txt", playlist.ID)
	}

	textData, err := ExportToText(playlist)
	if err != nil {
		return "", fmt.Errorf("failed to generate text: %w", err)
	}

	if err := os.WriteFile(path, textData, 0644); err != nil {
		return "", fmt.Errorf("failed to write text file: %w", err)
	}

	return path, nil
}

// WriteJSONExport exports a playlist to {playlist.ID}.json unless path is given.
func WriteJSONExport(playlist *models.Playlist, path string) (string, error) {
	if path == "" {
		path = playlist.ID + ".json"
	}

	data, err := ExportToJSON(playlist)
	if err != nil {
		return "", fmt.Errorf("JSON marshal failed: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("JSON write failed: %w", err)
	}

	return path, nil
}

// WriteExport writes playlist into dir in the given format and returns the files created.
func WriteExport(playlist *models.Playlist, format Format, dir string) ([]string, error) {
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	switch format {
	case FormatCSV:
		res, err := WriteCSVExport(playlist, filepath.Join(dir, playlist.ID))
		if err != nil {
			return nil, fmt.Errorf("CSV export failed: %w", err)
		}
		return []string{res.ProblemsFile, res.MetadataFile}, nil
	case FormatMarkdown:
		file, err := WriteMarkdownExport(playlist, filepath.Join(dir, playlist.ID))
		if err != nil {
			return nil, fmt.Errorf("markdown export failed: %w", err)
		}
		return []string{file}, nil
	case FormatText:
		file, err := WriteTextExport(playlist, filepath.Join(dir, playlist.ID+"_problems.txt"))
		if err != nil {
			return nil, fmt.Errorf("text export failed: %w", err)
		}
		return []string{file}, nil
	case FormatJSON:
		file, err := WriteJSONExport(playlist, filepath.Join(dir, playlist.ID+".json"))
		if err != nil {
			return nil, err
		}
		return []string{file}, nil
	}
	return nil, fmt.Errorf("%w: unknown export format %q", shared.ErrInvalidArgument, format)
}

// PlaylistExportResult is the outcome of exporting one playlist in a bulk export.
type PlaylistExportResult struct {
	PlaylistID   string   `json:"playlist_id"`
	PlaylistName string   `json:"playlist_name"`
	Success      bool     `json:"success"`
	Files        []string `json:"files,omitempty"`
	Error        string   `json:"error,omitempty"`
}

// BulkExportResult summarizes a bulk export.
type BulkExportResult struct {
	Format            Format                 `json:"format"`
	TotalPlaylists    int                    `json:"total_playlists"`
	SuccessfulExports int                    `json:"successful_exports"`
	FailedExports     int                    `json:"failed_exports"`
	OutputDirectory   string                 `json:"output_directory"`
	ManifestPath      string                 `json:"-"`
	ExportedAt        time.Time              `json:"exported_at"`
	Results           []PlaylistExportResult `json:"results"`
}

// WriteBulkExportManifest writes the bulk export summary as indented JSON.
func WriteBulkExportManifest(result *BulkExportResult, path string) error {
	data, err := shared.MarshalJSON(result, true)
	if err != nil {
		return fmt.Errorf("failed to marshal manifest: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write manifest: %w", err)
	}
	return nil
}

func problemFields(link models.PlaylistProblem) (title, difficulty, tags string) {
	if link.Problem == nil {
		return link.ProblemID, "", ""
	}
	return link.Problem.Title, string(link.Problem.Difficulty), strings.Join(link.Problem.Tags, ";")
}

func difficultySummary(playlist *models.Playlist) string {
	counts := map[models.Difficulty]int{}
	for _, link := range playlist.Problems {
		if link.Problem != nil {
			counts[link.Problem.Difficulty]++
		}
	}

	parts := []string{}
	for _, d := range []models.Difficulty{models.DifficultyEasy, models.DifficultyMedium, models.DifficultyHard} {
		if counts[d] > 0 {
			parts = append(parts, fmt.Sprintf("%d %s", counts[d], strings.ToLower(string(d))))
		}
	}
	return strings.Join(parts, ", ")
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}
