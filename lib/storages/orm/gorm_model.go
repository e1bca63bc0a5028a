package orm

import (
	"time"

	"github.com/pescuma/vulndig/lib/model"
)

type sqlConfig struct {
	Key   string `gorm:"primaryKey"`
	Value string

	CreatedAt time.Time
	UpdatedAt time.Time
}

type sqlFix struct {
	ID         model.ID `gorm:"primaryKey"`
	CVE        string   `gorm:"index"`
	CommitHash string   `gorm:"index"`
	RepoURL    string

	CWE string

	RepositoryID *model.UUID `gorm:"index"`

	FilesChanged  *int
	LinesAdded    *int
	LinesDeleted  *int
	LinesModified *int

	AnalyzedAt *time.Time

	Data map[string]string `gorm:"serializer:json"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

type sqlRepository struct {
	ID      model.UUID `gorm:"primaryKey"`
	Name    string
	Owner   string
	URL     string `gorm:"uniqueIndex"`
	RootDir string
	VCS     string
	Branch  string

	ClonedAt *time.Time

	Data map[string]string `gorm:"serializer:json"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

func toSqlFix(f *model.Fix) *sqlFix {
	return &sqlFix{
		ID:            f.ID,
		CVE:           f.CVE,
		CommitHash:    f.CommitHash,
		RepoURL:       f.RepoURL,
		CWE:           f.CWE,
		RepositoryID:  f.RepositoryID,
		FilesChanged:  encodeMetric(f.FilesChanged),
		LinesAdded:    encodeMetric(f.LinesAdded),
		LinesDeleted:  encodeMetric(f.LinesDeleted),
		LinesModified: encodeMetric(f.LinesModified),
		AnalyzedAt:    f.AnalyzedAt,
		Data:          f.Data,
	}
}

func toModelFix(fs *model.Fixes, sf *sqlFix) *model.Fix {
	result := fs.GetOrCreateEx(sf.CVE, sf.CommitHash, sf.RepoURL, &sf.ID)
	result.CWE = sf.CWE
	result.RepositoryID = sf.RepositoryID
	result.FilesChanged = decodeMetric(sf.FilesChanged)
	result.LinesAdded = decodeMetric(sf.LinesAdded)
	result.LinesDeleted = decodeMetric(sf.LinesDeleted)
	result.LinesModified = decodeMetric(sf.LinesModified)
	result.AnalyzedAt = sf.AnalyzedAt
	result.Data = decodeMap(sf.Data)
	return result
}

func toSqlRepository(r *model.Repository) *sqlRepository {
	return &sqlRepository{
		ID:       r.ID,
		Name:     r.Name,
		Owner:    r.Owner,
		URL:      r.URL,
		RootDir:  r.RootDir,
		VCS:      r.VCS,
		Branch:   r.Branch,
		ClonedAt: r.ClonedAt,
		Data:     r.Data,
	}
}

func toModelRepository(rs *model.Repositories, sr *sqlRepository) *model.Repository {
	result := rs.GetOrCreateEx(sr.URL, &sr.ID)
	result.Name = sr.Name
	result.Owner = sr.Owner
	result.RootDir = sr.RootDir
	result.VCS = sr.VCS
	result.Branch = sr.Branch
	result.ClonedAt = sr.ClonedAt
	result.Data = decodeMap(sr.Data)
	return result
}

// -1 means not computed yet and is stored as NULL
func encodeMetric(v int) *int {
	if v == -1 {
		return nil
	}
	return &v
}

func decodeMetric(v *int) int {
	if v == nil {
		return -1
	}
	return *v
}

func decodeMap(m map[string]string) map[string]string {
	if m == nil {
		return map[string]string{}
	}
	return m
}
