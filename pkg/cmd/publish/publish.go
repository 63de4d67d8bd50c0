package publish

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/mpapenbr/iracelog-lapanalysis/log"
	"github.com/mpapenbr/iracelog-lapanalysis/pkg/cmd/source"
	"github.com/mpapenbr/iracelog-lapanalysis/pkg/config"
	"github.com/mpapenbr/iracelog-lapanalysis/pkg/publish"
)

var (
	defaultConnect = publish.Connect
	connect        = defaultConnect
)

func NewPublishCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "publish",
		Short: "derives the laps and publishes them to NATS",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _ := config.Resolve()
			nc, err := connect(cmd.Context(), config.NatsURL, cfg.WaitForServices)
			if err != nil {
				return err
			}
			defer nc.Close()
			if err := publishLaps(cmd.Context(), nc); err != nil {
				return err
			}
			return nc.Flush()
		},
	}
	cmd.Flags().StringVar(&config.NatsURL, "nats-url", "nats://localhost:4222",
		"URL of the NATS server")
	cmd.Flags().StringVar(&config.SubjectPrefix, "subject-prefix",
		publish.DefaultSubjectPrefix, "prefix of the subject the laps are published to")
	return cmd
}

func publishLaps(ctx context.Context, conn publish.Conn) error {
	logger := log.GetFromContext(ctx).Named("publish")
	s, err := source.New(ctx)
	if err != nil {
		return err
	}
	defer s.Close()
	res, err := s.Derive(ctx)
	if err != nil {
		return err
	}
	p := publish.New(conn,
		publish.WithSubjectPrefix(config.SubjectPrefix),
		publish.WithLogger(logger))
	msg, err := p.Publish(s.Selection, res)
	if err != nil {
		return err
	}
	logger.Info("laps published",
		log.String("subject", p.Subject(s.Selection)),
		log.String("id", msg.ID))
	return nil
}
