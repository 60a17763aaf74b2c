package graph

import (
	"context"
	"strings"
	"sync"
)

// Responder produces the result of a statement from its parameters.
type Responder func(params map[string]any) (Result, error)

// Returning is a Responder that always yields records.
func Returning(records ...Record) Responder {
	return func(map[string]any) (Result, error) {
		return Result{Records: records}, nil
	}
}

// ExecutedQuery captures a statement and its parameters.
type ExecutedQuery struct {
	Query  string
	Params map[string]any
}

type route struct {
	fragment string
	respond  Responder
}

// MemoryClient is a scripted Client for tests. Statements are answered by the first
// registered responder whose fragment occurs in the Cypher text; unmatched statements yield an
// empty result. Every call is recorded.
type MemoryClient struct {
	mu           sync.Mutex
	reads        []route
	writes       []route
	readCalls    []ExecutedQuery
	writeCalls   []ExecutedQuery
	err          error
	connectivity error
}

// NewMemoryClient returns a client with no responders.
func NewMemoryClient() *MemoryClient {
	return &MemoryClient{}
}

// OnRead answers read statements containing fragment with respond.
func (m *MemoryClient) OnRead(fragment string, respond Responder) *MemoryClient {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reads = append(m.reads, route{fragment: fragment, respond: respond})
	return m
}

// OnWrite answers write statements containing fragment with respond.
func (m *MemoryClient) OnWrite(fragment string, respond Responder) *MemoryClient {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writes = append(m.writes, route{fragment: fragment, respond: respond})
	return m
}

// WithError makes every subsequent statement fail with err.
func (m *MemoryClient) WithError(err error) *MemoryClient {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
	return m
}

// WithConnectivityError forces VerifyConnectivity to return err.
func (m *MemoryClient) WithConnectivityError(err error) *MemoryClient {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.connectivity = err
	return m
}

func (m *MemoryClient) ExecuteWrite(_ context.Context, cypher string, params map[string]any) (Result, error) {
	return m.execute(&m.writeCalls, m.writes, cypher, params)
}

func (m *MemoryClient) ExecuteRead(_ context.Context, cypher string, params map[string]any) (Result, error) {
	return m.execute(&m.readCalls, m.reads, cypher, params)
}

func (m *MemoryClient) execute(calls *[]ExecutedQuery, routes []route, cypher string, params map[string]any) (Result, error) {
	m.mu.Lock()
	*calls = append(*calls, ExecutedQuery{Query: cypher, Params: cloneParams(params)})
	err := m.err
	var respond Responder
	for _, r := range routes {
		if strings.Contains(cypher, r.fragment) {
			respond = r.respond
			break
		}
	}
	m.mu.Unlock()

	if err != nil {
		return Result{}, err
	}
	if respond == nil {
		return Result{}, nil
	}
	return respond(params)
}

func (m *MemoryClient) VerifyConnectivity(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.connectivity
}

func (m *MemoryClient) Close(context.Context) error {
	return nil
}

// WriteCalls returns the write statements executed so far.
func (m *MemoryClient) WriteCalls() []ExecutedQuery {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]ExecutedQuery(nil), m.writeCalls...)
}

// ReadCalls returns the read statements executed so far.
func (m *MemoryClient) ReadCalls() []ExecutedQuery {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]ExecutedQuery(nil), m.readCalls...)
}

func cloneParams(src map[string]any) map[string]any {
	if src == nil {
		return nil
	}
	dst := make(map[string]any, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}
