package catalog

// Schema:
//
//	(:Movie {movieId, title, releaseDate, posterPath, overview, popularity})
//	(:Person {personId, name, popularity})
//	(:Person)-[:ACTED_IN {character, order}]->(:Movie)
//	(:Person)-[:WORKED_ON {job, department}]->(:Movie)

var schemaCypher = []string{
	`CREATE CONSTRAINT movie_id IF NOT EXISTS FOR (m:Movie) REQUIRE m.movieId IS UNIQUE`,
	`CREATE CONSTRAINT person_id IF NOT EXISTS FOR (p:Person) REQUIRE p.personId IS UNIQUE`,
	`CREATE INDEX movie_title IF NOT EXISTS FOR (m:Movie) ON (m.title)`,
}

const searchMoviesCypher = `
MATCH (m:Movie)
WHERE toLower(m.title) CONTAINS $query
RETURN m.movieId AS id,
       m.title AS title,
       m.releaseDate AS releaseDate,
       m.posterPath AS posterPath,
       m.popularity AS popularity
ORDER BY toLower(m.title) = $query DESC, m.popularity DESC, m.movieId ASC
LIMIT $limit
`

const movieDetailsCypher = `
MATCH (m:Movie {movieId: $movieId})
RETURN m.movieId AS id,
       m.title AS title,
       m.releaseDate AS releaseDate,
       m.posterPath AS posterPath,
       m.overview AS overview,
       m.popularity AS popularity
`

const movieCreditsCypher = `
MATCH (m:Movie {movieId: $movieId})
OPTIONAL MATCH (p:Person)-[r:ACTED_IN|WORKED_ON]->(m)
RETURN type(r) AS kind,
       p.personId AS personId,
       p.name AS name,
       p.popularity AS popularity,
       r.character AS character,
       r.job AS job,
       r.department AS department,
       coalesce(r.order, 0) AS creditOrder
ORDER BY kind, creditOrder, personId
`

const personFilmographyCypher = `
MATCH (p:Person {personId: $personId})
OPTIONAL MATCH (p)-[r:ACTED_IN|WORKED_ON]->(m:Movie)
RETURN type(r) AS kind,
       m.movieId AS id,
       m.title AS title,
       m.releaseDate AS releaseDate,
       m.posterPath AS posterPath,
       m.popularity AS popularity
ORDER BY kind, id
`

const upsertMovieCypher = `
MERGE (m:Movie {movieId: $movieId})
SET m += $props
WITH m
CALL {
  WITH m
  UNWIND $cast AS c
  MERGE (p:Person {personId: c.personId})
  SET p.name = c.name, p.popularity = c.popularity
  MERGE (p)-[r:ACTED_IN]->(m)
  SET r.character = c.character, r.order = c.order
}
CALL {
  WITH m
  UNWIND $crew AS c
  MERGE (p:Person {personId: c.personId})
  SET p.name = c.name, p.popularity = c.popularity
  MERGE (p)-[r:WORKED_ON {job: c.job}]->(m)
  SET r.department = c.department
}
RETURN m.movieId AS movieId
`

const countMoviesCypher = `
MATCH (m:Movie)
RETURN count(m) AS movies
`

const actedIn = "ACTED_IN"
