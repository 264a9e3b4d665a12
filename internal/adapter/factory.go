package adapter

import (
	"fmt"
)

// adapterRegistry は、サイト名とArchiveAdapter実装のマッピングを保持します。
var adapterRegistry = map[string]func() ArchiveAdapter{
	"apod": NewAPODAdapter,
}

// GetAdapter は、指定されたサイト名に対応するArchiveAdapterの新しいインスタンスを返します。
func GetAdapter(siteName string) (ArchiveAdapter, error) {
	factory, ok := adapterRegistry[siteName]
	if !ok {
		return nil, fmt.Errorf("サイト名 '%s' に対応するアダプタが見つかりません", siteName)
	}
	return factory(), nil
}
