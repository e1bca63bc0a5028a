package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/samber/lo"

	"github.com/pescuma/vulndig/lib/model"
)

func (s *server) initFixes(r *gin.Engine) {
	r.GET("/api/fixes", s.listFixes)
	r.GET("/api/fixes/:cve", s.getFixesByCVE)
}

func (s *server) listFixes(c *gin.Context) {
	result := lo.Map(s.fixes.List(), func(f *model.Fix, _ int) gin.H { return s.toFix(f) })

	c.JSON(http.StatusOK, result)
}

func (s *server) getFixesByCVE(c *gin.Context) {
	fixes := s.fixes.ListByCVE(c.Param("cve"))

	if len(fixes) == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown CVE"})
		return
	}

	result := lo.Map(fixes, func(f *model.Fix, _ int) gin.H { return s.toFix(f) })

	c.JSON(http.StatusOK, result)
}

func (s *server) toFix(f *model.Fix) gin.H {
	result := gin.H{
		"cve":    f.CVE,
		"cwe":    f.CWE,
		"commit": f.CommitHash,
		"repo":   s.toRepoReference(f.RepositoryID),
	}

	if f.AnalyzedAt != nil {
		result["analysis"] = gin.H{
			"filesChanged":  f.FilesChanged,
			"linesAdded":    f.LinesAdded,
			"linesDeleted":  f.LinesDeleted,
			"linesModified": f.LinesModified,
			"analyzedAt":    f.AnalyzedAt,
		}
	}

	return result
}
