package view_state

import (
	"fmt"

	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"
)

const DefaultRolloverSchedule = "0 0 * * *"

// ScheduleRollover registers a job on c that moves the view to the new day at
// midnight. c must be created with the view's location, e.g.
// cron.New(cron.WithLocation(view.Location())).
func ScheduleRollover(c *cron.Cron, v *View, schedule string) (cron.EntryID, error) {
	if schedule == "" {
		schedule = DefaultRolloverSchedule
	}
	id, err := c.AddFunc(schedule, func() {
		if v.RollOver() {
			log.Debugf("Selected day moved to %s", v.Current().SelectedDay)
		}
	})
	if err != nil {
		return 0, fmt.Errorf("invalid rollover schedule %q: %w", schedule, err)
	}
	log.Infof("Day rollover scheduled with %q", schedule)
	return id, nil
}
