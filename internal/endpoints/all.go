package endpoints

import (
	"github.com/jackzampolin/regcore/internal/api"
	"github.com/jackzampolin/regcore/internal/ingest"
	"github.com/jackzampolin/regcore/internal/toolsurface"
)

// Config carries the components the endpoints dispatch into.
type Config struct {
	Surface  *toolsurface.Surface
	Ingestor *ingest.Ingestor
}

// All returns every endpoint, in route-registration order: health first,
// then the nine read-side tools, then the write-side admin routes.
func All(cfg Config) []api.Endpoint {
	return []api.Endpoint{
		&HealthEndpoint{},
		&ListRegulationsEndpoint{Surface: cfg.Surface},
		&GetTOCEndpoint{Surface: cfg.Surface},
		&SmartSearchEndpoint{Surface: cfg.Surface},
		&ReadPageRangeEndpoint{Surface: cfg.Surface},
		&ReadChapterEndpoint{Surface: cfg.Surface},
		&SearchTablesEndpoint{Surface: cfg.Surface},
		&GetTableEndpoint{Surface: cfg.Surface},
		&LookupAnnotationEndpoint{Surface: cfg.Surface},
		&ResolveReferenceEndpoint{Surface: cfg.Surface},
		&IngestEndpoint{Ingestor: cfg.Ingestor},
		&DeleteRegulationEndpoint{Ingestor: cfg.Ingestor},
		&RebuildEndpoint{Ingestor: cfg.Ingestor},
	}
}
