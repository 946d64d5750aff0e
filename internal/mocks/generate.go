package mocks

//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name Repository --dir ../domain/draw --output domain/draw --outpkg drawmock --filename repository_mock.go
//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name Repository --dir ../domain/cacheversion --output domain/cacheversion --outpkg cacheversionmock --filename repository_mock.go
