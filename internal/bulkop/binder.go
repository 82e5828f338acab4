package bulkop

import (
	"github.com/ardenvale/illuminator-go/internal/models"
	"github.com/ardenvale/illuminator-go/internal/pills"
)

// BindPills projects a controller's progress into the pill registry and keeps
// it synchronized. A pill exists iff the operation is non-idle and the
// operator minimized the modal; a transition back to idle removes it
// unconditionally (a no-op remove when it never existed).
func BindPills(c *Controller, registry *pills.Registry) {
	c.Subscribe(func(p Progress) {
		if p.Status == StatusIdle || !p.Minimized {
			registry.Remove(p.Kind)
			return
		}
		registry.Set(models.Pill{
			ID:          p.Kind,
			Label:       p.PillLabel,
			StatusText:  StatusText(p),
			StatusColor: StatusColor(p.Status),
			TabID:       p.TabID,
		})
	})
}
