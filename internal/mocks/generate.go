package mocks

//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name Source --dir ../domain/feed --output domain/feed --outpkg feedmock --filename source_mock.go
