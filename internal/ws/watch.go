package ws

import (
	"github.com/ignatzorin/freelance-nexus/internal/logger"
	"github.com/ignatzorin/freelance-nexus/internal/view"
)

// EventState событие с новым состоянием представления.
const EventState = "state"

// Watch публикует состояние представления в тему при каждом его изменении.
func Watch(hub *Hub, topic string, v view.View) {
	v.OnChange(func() {
		if err := hub.Publish(topic, EventState, v.Render()); err != nil {
			logger.WithComponent("ws").WithError(err).WithField("topic", topic).Debug("состояние не отправлено")
		}
	})
}
