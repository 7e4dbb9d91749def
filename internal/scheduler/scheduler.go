package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"maintenance-system/internal/services"
)

const reminderJobTimeout = 2 * time.Minute

// ReminderScheduler периодически запускает напоминания о зависших заявках.
type ReminderScheduler struct {
	cronEngine      *cron.Cron
	reminderService services.ReminderServiceInterface
	spec            string
	logger          *zap.Logger
}

func NewReminderScheduler(reminderService services.ReminderServiceInterface, spec string, logger *zap.Logger) *ReminderScheduler {
	return &ReminderScheduler{
		cronEngine:      cron.New(cron.WithLocation(time.Local)),
		reminderService: reminderService,
		spec:            spec,
		logger:          logger,
	}
}

func (s *ReminderScheduler) Start() error {
	if _, err := s.cronEngine.AddFunc(s.spec, s.runReminders); err != nil {
		return fmt.Errorf("не удалось добавить задачу напоминаний (%s): %w", s.spec, err)
	}
	s.cronEngine.Start()
	s.logger.Info("Планировщик напоминаний запущен", zap.String("spec", s.spec))
	return nil
}

func (s *ReminderScheduler) runReminders() {
	ctx, cancel := context.WithTimeout(context.Background(), reminderJobTimeout)
	defer cancel()

	sent, err := s.reminderService.SendStaleReminders(ctx)
	if err != nil {
		s.logger.Error("Ошибка при отправке напоминаний", zap.Error(err))
		return
	}
	s.logger.Debug("Задача напоминаний выполнена", zap.Int("sent", sent))
}

// Stop ждёт завершения выполняющихся задач.
func (s *ReminderScheduler) Stop() {
	ctx := s.cronEngine.Stop()
	<-ctx.Done()
	s.logger.Info("Планировщик напоминаний остановлен")
}
