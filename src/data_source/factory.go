package datasource

import (
	"fmt"

	"stock-forecaster/src/data_source/eodhd"
	"stock-forecaster/src/data_source/stooq"
	"stock-forecaster/src/data_source/yahoo"
	"stock-forecaster/src/interfaces"
	"stock-forecaster/src/logger"
	"stock-forecaster/src/models"
)

// BuildSources creates the configured sources in fallback order.
func BuildSources(cfg *models.MConfig, netMgr interfaces.INetworkManager, log *logger.Logger) ([]interfaces.IDataSource, error) {
	sources := make([]interfaces.IDataSource, 0, len(cfg.DataSource.Sources))
	for _, sc := range cfg.DataSource.Sources {
		switch sc.Name {
		case "yahoo":
			sources = append(sources, yahoo.NewYahooFinanceSource(sc, netMgr, log.With("YahooFinanceSource")))
		case "stooq":
			sources = append(sources, stooq.NewStooqSource(sc, netMgr, log.With("StooqSource")))
		case "eodhd":
			sources = append(sources, eodhd.NewEODHDSource(sc, netMgr, log.With("EODHDSource")))
		default:
			return nil, fmt.Errorf("unknown data source %q", sc.Name)
		}
	}
	if len(sources) == 0 {
		return nil, fmt.Errorf("no data sources configured")
	}
	return sources, nil
}
