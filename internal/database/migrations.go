package database

// migrations are applied in order; never edit an entry that has shipped.
var migrations = [][]string{
	{
		`CREATE TABLE batches (
			id TEXT PRIMARY KEY,
			filename TEXT NOT NULL,
			total INTEGER,
			processed INTEGER NOT NULL DEFAULT 0,
			status TEXT NOT NULL DEFAULT 'processing',
			start_time TEXT NOT NULL,
			end_time TEXT
		)`,
		`CREATE TABLE results (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			batch_id TEXT NOT NULL REFERENCES batches(id) ON DELETE CASCADE,
			inscricao_estadual TEXT NOT NULL,
			cnpj TEXT,
			razao_social TEXT,
			nome_fantasia TEXT,
			unidade_fiscalizacao TEXT,
			logradouro TEXT,
			bairro_distrito TEXT,
			municipio TEXT,
			uf TEXT,
			cep TEXT,
			telefone TEXT,
			email TEXT,
			atividade_economica_principal TEXT,
			condicao TEXT,
			forma_pagamento TEXT,
			situacao_cadastral TEXT,
			data_situacao_cadastral TEXT,
			motivo_situacao_cadastral TEXT,
			nome_contador TEXT,
			status TEXT NOT NULL,
			campaign_status TEXT NOT NULL DEFAULT 'pending',
			last_contacted TEXT,
			notes TEXT,
			created_at TEXT NOT NULL DEFAULT ''
		)`,
		`CREATE INDEX idx_results_batch_id ON results(batch_id)`,
		`CREATE INDEX idx_batches_status ON batches(status)`,
	},
}
