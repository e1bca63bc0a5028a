package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/samber/lo"

	"github.com/pescuma/vulndig/lib/model"
)

func (s *server) initRepos(r *gin.Engine) {
	r.GET("/api/repos", s.listRepos)
}

func (s *server) initStats(r *gin.Engine) {
	r.GET("/api/stats", s.getStats)
}

func (s *server) listRepos(c *gin.Context) {
	result := lo.Map(s.repos.List(), func(r *model.Repository, _ int) gin.H { return s.toRepo(r) })

	c.JSON(http.StatusOK, result)
}

func (s *server) getStats(c *gin.Context) {
	fixes := s.fixes.List()

	analyzed := lo.CountBy(fixes, func(f *model.Fix) bool { return f.AnalyzedAt != nil })
	labeled := lo.CountBy(fixes, func(f *model.Fix) bool { return f.CWE != "" })
	cloned := lo.CountBy(s.repos.List(), func(r *model.Repository) bool { return r.Cloned() })

	c.JSON(http.StatusOK, gin.H{
		"fixes":    len(fixes),
		"analyzed": analyzed,
		"labeled":  labeled,
		"repos":    s.repos.Count(),
		"cloned":   cloned,
	})
}

func (s *server) toRepo(r *model.Repository) gin.H {
	return gin.H{
		"name":    r.Name,
		"owner":   r.Owner,
		"url":     r.URL,
		"rootDir": r.RootDir,
		"branch":  r.Branch,
		"cloned":  r.Cloned(),
	}
}

func (s *server) toRepoReference(id *model.UUID) gin.H {
	if id == nil {
		return nil
	}

	repo := s.repos.GetByID(*id)
	if repo == nil {
		return nil
	}

	return gin.H{
		"name":  repo.Name,
		"owner": repo.Owner,
		"url":   repo.URL,
	}
}
