// Package mocks holds gomock doubles for the ports interfaces.
//
// To regenerate after interface changes, run:
//
//	go generate ./internal/mocks
//
// Usage in tests:
//
//	ctrl := gomock.NewController(t)
//	analyzer := mocks.NewMockAnalyzer(ctrl)
//	analyzer.EXPECT().Analyze(gomock.Any(), "https://example.com", domain.StrategyMobile).Return(res, nil)
package mocks

//go:generate go run go.uber.org/mock/mockgen -package=mocks -destination=ports_mock.go perfscope/internal/ports Analyzer,Insights,ProcessorStarter,Profiles,Summarizer,TestRepository,Tests,WakeupPublisher
