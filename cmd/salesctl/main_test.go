package main

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

const endpointPayload = `[
 {"Produto":"Iphone 6","Categoria do Produto":"eletronicos","Preço":1200,"Frete":30,
  "Data da Compra":"10/01/2020","Vendedor":"Ana","Local da compra":"SP",
  "Avaliação da compra":5,"Tipo de pagamento":"cartao_credito","Quantidade de parcelas":10,
  "lat":-22.19,"lon":-48.79},
 {"Produto":"Cadeira","Categoria do Produto":"moveis","Preço":300,"Frete":20,
  "Data da Compra":"05/06/2021","Vendedor":"Bia","Local da compra":"RJ",
  "Avaliação da compra":4,"Tipo de pagamento":"boleto","Quantidade de parcelas":1,
  "lat":-22.25,"lon":-42.66},
 {"Produto":"Livro","Categoria do Produto":"livros","Preço":50,"Frete":5,
  "Data da Compra":"20/03/2022","Vendedor":"Ana","Local da compra":"SP",
  "Avaliação da compra":3,"Tipo de pagamento":"boleto","Quantidade de parcelas":1,
  "lat":-22.19,"lon":-48.79}
]`

func newEndpoint(t *testing.T) (*httptest.Server, *[]string) {
	t.Helper()
	var queries []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		queries = append(queries, r.URL.RawQuery)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(endpointPayload))
	}))
	t.Cleanup(srv.Close)
	t.Setenv("REDIS_ADDR", "")
	return srv, &queries
}

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	cmd := buildRootCmd()
	stdout, stderr := new(bytes.Buffer), new(bytes.Buffer)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestBuildRootCmdIncludesSubcommands(t *testing.T) {
	cmd := buildRootCmd()
	names := map[string]bool{}
	for _, sub := range cmd.Commands() {
		names[sub.Name()] = true
	}
	for _, name := range []string{"summary", "export"} {
		if !names[name] {
			t.Fatalf("expected subcommand %q to be registered", name)
		}
	}
}

func TestSummaryPrintsMetrics(t *testing.T) {
	srv, queries := newEndpoint(t)

	out, _, err := execute(t, "summary", "--source", srv.URL, "--regiao", "sudeste", "--ano", "2021")
	require.NoError(t, err)
	require.Len(t, *queries, 1)
	assert.Equal(t, "ano=2021&regiao=sudeste", (*queries)[0])
	assert.Contains(t, out, "Sudeste")
	assert.Contains(t, out, "R$ 1.55 mil")
	assert.Contains(t, out, "3.00")
	assert.Contains(t, out, "Estados")
	assert.Contains(t, out, "Ana")
}

func TestSummaryRejectsYear(t *testing.T) {
	srv, queries := newEndpoint(t)
	_, _, err := execute(t, "summary", "--source", srv.URL, "--ano", "2019")
	require.Error(t, err)
	assert.Empty(t, *queries)
}

func TestExportCSV(t *testing.T) {
	srv, queries := newEndpoint(t)
	path := filepath.Join(t.TempDir(), "vendas.csv")

	out, _, err := execute(t, "export", "--source", srv.URL, "--out", path,
		"--preco-min", "100", "--colunas", "Produto,Preço")
	require.NoError(t, err)
	assert.Equal(t, "ano=&regiao=", (*queries)[0])
	assert.Contains(t, out, "2 linhas, 2 colunas")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "Produto,Preço\nIphone 6,1200\nCadeira,300\n", string(data))
}

func TestExportXLSXWithColumnFallback(t *testing.T) {
	srv, _ := newEndpoint(t)
	path := filepath.Join(t.TempDir(), "vendas.xlsx")

	_, errOut, err := execute(t, "export", "--source", srv.URL, "--format", "xlsx", "--out", path,
		"--sheet", "Vendas", "--colunas", "Inexistente", "--data-inicio", "2021-01-01")
	require.NoError(t, err)
	assert.Contains(t, errOut, "Nenhuma das colunas")

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows("Vendas")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "Produto", rows[0][0])
	assert.Len(t, rows[0], 12)
}

func TestExportRejectsBadInput(t *testing.T) {
	srv, queries := newEndpoint(t)
	dir := t.TempDir()

	_, _, err := execute(t, "export", "--source", srv.URL, "--format", "pdf", "--out", filepath.Join(dir, "x.pdf"))
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "unsupported format"))

	_, _, err = execute(t, "export", "--source", srv.URL, "--out", filepath.Join(dir, "x.csv"), "--data-fim", "31/12/2021")
	require.Error(t, err)

	_, _, err = execute(t, "export", "--source", srv.URL, "--out", filepath.Join(dir, "x.csv"),
		"--preco-min", "500", "--preco-max", "100")
	require.Error(t, err)
	assert.Empty(t, *queries)
}
